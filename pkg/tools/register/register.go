package register

// TriggerReload points at the deployment manager's reload entry.
// NOTE: this is a helper register function,
// in order to avoid future modules causing "import cycles not allowed" error,
// they can still call the registered function.
var TriggerReload func() error

// Register registers the reload trigger
func Register(f func() error) {
	TriggerReload = f
}
