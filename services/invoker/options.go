package invoker

type callOptions struct {
	signer   string
	gasLimit uint64
}

type CallOption func(*callOptions)

// WithSigner overrides the identity the operation is signed with.
func WithSigner(name string) CallOption {
	return func(o *callOptions) {
		o.signer = name
	}
}

// WithGasLimit overrides the configured gas-limit ceiling for one call.
func WithGasLimit(limit uint64) CallOption {
	return func(o *callOptions) {
		o.gasLimit = limit
	}
}

func newCallOptions(defaultSigner string, defaultGasLimit uint64, opts []CallOption) callOptions {
	options := callOptions{
		signer:   defaultSigner,
		gasLimit: defaultGasLimit,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
