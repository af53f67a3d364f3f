package config

// EnvPrefix is empty because every field names its variable in full.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "TRADESPHERE_DB_DSN"
	EnvDBHost = "TRADESPHERE_DB_HOST"
	EnvDBUser = "TRADESPHERE_DB_USER"
	EnvDBName = "TRADESPHERE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
