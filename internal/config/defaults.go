package config

const (
	DefaultHomeNation       = "KAN"
	DefaultVisaValidityDays = 730
	DefaultEngine           = "pipeline"
	DefaultWorkers          = 1
	DefaultListenAddr       = "127.0.0.1:8080"
	DefaultLogLevel         = "info"

	envPrefix = "BORDERGUARD_"
)
