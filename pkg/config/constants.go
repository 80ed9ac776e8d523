package config

const EnvPrefix = "VELORA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)
