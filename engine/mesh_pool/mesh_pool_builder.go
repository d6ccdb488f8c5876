package mesh_pool

// MeshPoolBuilderOption is a functional option for configuring a MeshPool during construction.
type MeshPoolBuilderOption func(*meshPool)

// WithLabel sets the prefix used for the debug labels of the pool's renderer resources.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - MeshPoolBuilderOption: functional option to set the label
func WithLabel(label string) MeshPoolBuilderOption {
	return func(p *meshPool) {
		if label != "" {
			p.label = label
		}
	}
}
