package report

type Report struct {
	Run        *RunReport        `json:"run,omitempty"`
	Learn2Earn *Learn2EarnReport `json:"learn2earn,omitempty"`
}
