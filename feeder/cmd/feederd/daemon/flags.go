package daemon

const (
	forceFlag          = "force"
	keyNameFlag        = "key-name"
	keyringBackendFlag = "keyring-backend"
	recoverFlag        = "recover"
	denomFlag          = "denom"
	limitFlag          = "limit"

	// read by start and keys when set, instead of prompting
	passphraseEnvVar = "FEEDERD_KEYRING_PASSPHRASE"
)
