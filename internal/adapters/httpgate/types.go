package httpgate

// Tipos del wire; los comparte cmd/wlctl.

type CheckResponse struct {
	Identity string `json:"identity"`
	Allowed  bool   `json:"allowed"`
}

type EntryDTO struct {
	Identity     string `json:"identity"`
	AccountID    string `json:"account_id,omitempty"`
	RegisteredAt string `json:"registered_at,omitempty"`
	Namespace    string `json:"namespace"`
}

type ListResponse struct {
	Count   int        `json:"count"`
	Entries []EntryDTO `json:"entries"`
}

type AddRequest struct {
	Identity  string `json:"identity"`
	Namespace string `json:"namespace,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

type AddResponse struct {
	Result  string `json:"result"`
	Message string `json:"message,omitempty"`
}

type ReloadResponse struct {
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

type PendingResponse struct {
	Messages []string `json:"messages"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}
