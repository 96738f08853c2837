// export_test.go exports private functions for white-box testing.
package logger

// CollectErrorEntriesExported exposes collectErrorEntries to the external test package.
func CollectErrorEntriesExported(err error) []ErrorEntry {
	return collectErrorEntries(err)
}

// FormatErrorEntriesExported exposes formatErrorEntries to the external test package.
func FormatErrorEntriesExported(entries []ErrorEntry) string {
	return formatErrorEntries(entries)
}
