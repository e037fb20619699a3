package response

type ClaimSignature struct {
	Success    bool   `json:"success"`
	Signature string `json:"signature,omitempty"`

	// Contract ids start at zero, so the field is never elided on success
	ContractId int64 `json:"contractId"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
