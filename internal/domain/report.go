package domain

type ClientTally struct {
	Total       int `json:"total"`
	Initialised int `json:"initialised"`
	Configured  int `json:"configured"`
}

// Report is rebuilt from the filtered events on every run.
type Report struct {
	Events  map[string]int         `json:"events"`
	Clients map[string]ClientTally `json:"clients"`
}

func NewReport() Report {
	return Report{
		Events:  make(map[string]int),
		Clients: make(map[string]ClientTally),
	}
}
