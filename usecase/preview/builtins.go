package preview

// Built-in component types.
const (
	TypeHero         = "hero"
	TypeFAQ          = "faq"
	TypePricing      = "pricing"
	TypeFeatures     = "features"
	TypeCallToAction = "cta"
	TypeTestimonials = "testimonials"
)

func registerBuiltins(r *Registry) {
	r.Register(TypeHero, typed[heroView]("hero.tmpl"))
	r.Register(TypeFAQ, typed[faqView]("faq.tmpl"))
	r.Register(TypePricing, typed[pricingView]("pricing.tmpl"))
	r.Register(TypeFeatures, typed[featuresView]("features.tmpl"))
	r.Register(TypeCallToAction, typed[ctaView]("cta.tmpl"))
	r.Register(TypeTestimonials, typed[testimonialsView]("testimonials.tmpl"))
}
