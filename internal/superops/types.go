package superops

import (
	"encoding/json"
	"strconv"

	"github.com/spec-kit/ticket-migrate/internal/domain"
)

// flexString decodes a JSON value that may arrive as a string or a
// number. SuperOps is inconsistent about identifier types.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type listInfo struct {
	HasMore    bool `json:"hasMore"`
	TotalCount int  `json:"totalCount"`
}

// ClientAccount is one source-platform client (a tenant customer).
type ClientAccount struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
}

// ClientPage is one page of the client list.
type ClientPage struct {
	Clients    []ClientAccount
	HasMore    bool
	TotalCount int
}

// TicketSummary is one ticket row from the ticket list, before
// conversations and notes are attached.
type TicketSummary struct {
	TicketID    string
	DisplayID   string
	Subject     string
	Status      string
	Priority    string
	CreatedTime string
}

// TicketPage is one page of a client's ticket list.
type TicketPage struct {
	Tickets    []TicketSummary
	HasMore    bool
	TotalCount int
}

type clientListData struct {
	GetClientList *struct {
		Clients  []ClientAccount `json:"clients"`
		ListInfo listInfo        `json:"listInfo"`
	} `json:"getClientList"`
}

type ticketListData struct {
	GetTicketList *struct {
		Tickets []struct {
			TicketID    flexString `json:"ticketId"`
			DisplayID   flexString `json:"displayId"`
			Subject     string     `json:"subject"`
			Status      string     `json:"status"`
			Priority    string     `json:"priority"`
			CreatedTime string     `json:"createdTime"`
		} `json:"tickets"`
		ListInfo listInfo `json:"listInfo"`
	} `json:"getTicketList"`
}

type wireAttachment struct {
	FileName         string     `json:"fileName"`
	OriginalFileName string     `json:"originalFileName"`
	FileSize         flexString `json:"fileSize"`
}

type wireRecipient struct {
	User json.RawMessage `json:"user"`
}

type conversationListData struct {
	GetTicketConversationList []struct {
		ConversationID flexString       `json:"conversationId"`
		Content        string           `json:"content"`
		Time           string           `json:"time"`
		User           json.RawMessage  `json:"user"`
		ToUsers        []wireRecipient  `json:"toUsers"`
		CcUsers        []wireRecipient  `json:"ccUsers"`
		BccUsers       []wireRecipient  `json:"bccUsers"`
		Attachments    []wireAttachment `json:"attachments"`
		Type           string           `json:"type"`
	} `json:"getTicketConversationList"`
}

type noteListData struct {
	GetTicketNoteList []struct {
		NoteID      flexString       `json:"noteId"`
		AddedBy     json.RawMessage  `json:"addedBy"`
		AddedOn     string           `json:"addedOn"`
		Content     string           `json:"content"`
		Attachments []wireAttachment `json:"attachments"`
		PrivacyType string           `json:"privacyType"`
	} `json:"getTicketNoteList"`
}

// resolveUser turns a free-form user payload into a domain.User. Anything
// that is not an object with a name, or a bare name string, resolves to
// nil; the caller defaults and keeps going.
func resolveUser(raw json.RawMessage) *domain.User {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var obj struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Name != "" {
		return &domain.User{Name: obj.Name, Email: obj.Email}
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil && name != "" {
		return &domain.User{Name: name}
	}
	return nil
}

func resolveRecipients(recipients []wireRecipient) []domain.User {
	users := make([]domain.User, 0, len(recipients))
	for _, rec := range recipients {
		if user := resolveUser(rec.User); user != nil {
			users = append(users, *user)
		}
	}
	return users
}

func resolveAttachments(attachments []wireAttachment) []domain.AttachmentReference {
	if len(attachments) == 0 {
		return nil
	}
	refs := make([]domain.AttachmentReference, 0, len(attachments))
	for _, att := range attachments {
		size, _ := strconv.ParseInt(att.FileSize.String(), 10, 64)
		refs = append(refs, domain.AttachmentReference{
			FileName:         att.FileName,
			OriginalFileName: att.OriginalFileName,
			FileSize:         size,
		})
	}
	return refs
}
