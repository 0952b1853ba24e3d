package domain

// ProgressFunc reports download progress while paging through a resource.
// Called repeatedly during pagination: (10, 35), (20, 35), ...
type ProgressFunc func(loaded, total int)
