package domain

// Credentials is the payload of a credential notification sent to a newly
// provisioned account.
type Credentials struct {
	Login        string
	Password     string
	ListingTitle string
	LoginURL     string
}

// ProvisioningBatch is the machine-resumable progress report of one batch
// provisioning page. No server-side job record exists; the caller re-submits
// with Offset advanced by the page size until Complete.
type ProvisioningBatch struct {
	BatchSize     int      `json:"batch_size"`
	Offset        int      `json:"offset"`
	TotalEligible int      `json:"total_eligible"`
	Created       int      `json:"created"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors"`
	Processed     int      `json:"processed"`
	Remaining     int      `json:"remaining"`
	Complete      bool     `json:"complete"`
}
