// Package exporter writes parse results as CSV.
//
// CSVWriter handles files (optionally with a UTF-8 BOM for Excel) and
// WriteTo streams to any io.Writer. The record helpers flatten results
// into tables:
//
//	SeriesRecords    one row per discharge point, tagged with its series page
//	QualityRecords   one row per water-quality sample
//	ActivityRecords  one row per daily report activity, day shift first
//
// ResultExporter combines both to write every table of a result under
// the exports directory:
//
//	exp := exporter.NewResultExporter(exporter.NewCSVWriter(paths, logger))
//	files, err := exp.Export(result, "BH-07")
package exporter
