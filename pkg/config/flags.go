package config

type RunFlagsNameMapping struct {
	BaseURL      string
	ApiAddress   string
	StorePath    string
	Interval     string
	Window       string
	ProbeTimeout string

	Wait           string
	WaitRetryCount string
	WaitRetryDelay string

	EndpointsFile string
}
