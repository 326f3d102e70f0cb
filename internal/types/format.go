package types

// FileFormat is the on-disk format of candle and table files.
type FileFormat string

const (
	FileFormatParquet FileFormat = "parquet"
	FileFormatCSV     FileFormat = "csv"
)

// Extension returns the file extension for the format, without the dot.
func (f FileFormat) Extension() string {
	return string(f)
}

// IsValid reports whether the format is one DuckDB can read and write here.
func (f FileFormat) IsValid() bool {
	return f == FileFormatParquet || f == FileFormatCSV
}
