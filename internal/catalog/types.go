package catalog

// FileRecord is one catalogued file.
type FileRecord struct {
	ID           int64  `json:"id"`
	FilePath     string `json:"file_path"`
	FileName     string `json:"file_name"`
	ResourceName string `json:"resource_name"`
	Directory    string `json:"directory"`
	Size         int64  `json:"size"`
	ModifiedTime int64  `json:"modified_time"`
}

// IndexResult reports the outcome of one directory scan.
type IndexResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Stats summarizes the catalog contents.
type Stats struct {
	TotalFiles       int   `json:"total_files"`
	TotalSize        int64 `json:"total_size"`
	TotalDirectories int   `json:"total_directories"`
}
