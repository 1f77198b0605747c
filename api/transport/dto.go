package transport

import (
	"github.com/fastygo/pagecomposer/domain"
	"github.com/fastygo/pagecomposer/pkg/notify"
	"github.com/fastygo/pagecomposer/usecase/editor"
)

// DraftResponse pairs a draft with its unsaved-state indicator.
type DraftResponse struct {
	Draft  *domain.Draft      `json:"draft"`
	Status editor.DraftStatus `json:"status"`
}

func NewDraftResponse(d *domain.Draft) DraftResponse {
	return DraftResponse{Draft: d, Status: editor.StatusOf(d)}
}

type OpenDraftResponse struct {
	DraftResponse
	Report editor.LoadReport `json:"report"`
}

type NotificationsResponse struct {
	Items []notify.Notification `json:"items"`
}
