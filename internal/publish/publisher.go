package publish

// Publisher defines the interface for delivering a built artifact
type Publisher interface {
	// Publish stores data under name, replacing any previous version
	Publish(name string, data []byte) error
}
