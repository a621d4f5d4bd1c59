package forkwork

// Launch constructs an async orchestrator for the registered work function
// workName, using environment defaults, and immediately runs it once with
// args. Pure forwarding over New and Run for the common one-shot case.
func Launch(workName string, args ...any) (*Orchestrator, bool, error) {
	orc, err := New(workName, true)
	if err != nil {
		return nil, false, err
	}

	ok, err := orc.Run(args...)
	return orc, ok, err
}
