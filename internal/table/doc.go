// Package table holds the flat row model shared by every extractor and the CSV
// encoders that write it to disk.
//
// Rows keep each cell's horizontal span so merged header cells can be padded with
// empty fields, keeping grouped headers aligned with the data rows beneath them.
// Two dialects are supported: Legacy, the ", " separated format the archive has always
// used, and RFC4180 for consumers that expect quoted CSV.
package table
