package health

// Status is the payload served on /health.
type Status struct {
	OK       bool   `json:"ok"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Service reports liveness and which analysis backend is configured.
type Service struct {
	provider string
	model    string
}

// NewService constructs a new health service.
func NewService(provider, model string) *Service {
	return &Service{provider: provider, model: model}
}

// Status returns a simple health payload.
func (s *Service) Status() Status {
	return Status{OK: true, Provider: s.provider, Model: s.model}
}
