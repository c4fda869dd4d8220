package domain

// Application is the parent record a task hangs off. It is owned elsewhere;
// only its tenant is read here.
type Application struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
}
