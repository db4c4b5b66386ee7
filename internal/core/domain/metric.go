package domain

// MetricSnapshot is the structured value tree an agent pushes per node:
// objects, arrays of objects, and numeric scalar leaves. The cache never
// validates its shape; unresolved paths are handled by returning a sentinel
// rather than erroring.
type MetricSnapshot map[string]interface{}
