package cache

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// InstanceKey identifies a pattern instance: a template (by content
	// hash) deformed with a set of parameter values.
	InstanceKey(templateHash string, opts InstanceKeyOpts) string

	// ArtifactKey identifies a rendered output of an instance.
	ArtifactKey(instanceHash string, opts ArtifactKeyOpts) string
}

// InstanceKeyOpts are the inputs that determine an instance besides the
// template.
type InstanceKeyOpts struct {
	Values    map[string]string `json:"values,omitempty"`
	Randomize bool              `json:"randomize,omitempty"`
	Seed      uint64            `json:"seed,omitempty"`
	Restore   bool              `json:"restore,omitempty"`
}

// ArtifactKeyOpts are the rendering options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Margin   float64 `json:"margin,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Labels   bool    `json:"labels,omitempty"`
	EdgeIDs  bool    `json:"edge_ids,omitempty"`
	Vertices bool    `json:"vertices,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// InstanceKey implements [Keyer].
func (DefaultKeyer) InstanceKey(templateHash string, opts InstanceKeyOpts) string {
	return hashKey("instance", templateHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(instanceHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", instanceHash, opts)
}
