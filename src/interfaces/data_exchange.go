package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger is a read surface exposing the series store to clients
// (HTTP API, gRPC query service).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Start serving. Blocks until the listener fails or Stop is called.
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
