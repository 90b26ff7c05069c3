// Package dataprocessing turns pump-test and daily drilling report workbooks
// into domain records.
//
// # Architecture
//
// Parsing runs strictly forward through five stages:
//
// 1. Classifier: decides which template a workbook follows
// 2. Extractors: read fixed cell coordinates described in layout.go
// 3. Normalizer: coerces raw cell values into numbers and UTC timestamps
// 4. Builder: assembles Site, Borehole, DischargeTest, Series and Quality
// 5. Parser: the single entry point tying the stages together
//
// # Usage
//
//	p := dataprocessing.NewParser(logger, dataprocessing.DefaultOptions())
//	result, err := p.ParseFile("BH-07 stepped.xlsx")
//	if err != nil {
//	    // only an undecodable file ends up here
//	}
//	if !result.Validation.IsValid {
//	    // show result.Validation.Errors to the user
//	}
//
// # Error Handling
//
// Expected problems with a workbook never surface as Go errors. Missing
// identifiers become warnings, missing mandatory report fields become
// validation errors, and an unrecognised template or missing sheet yields a
// result with no data and a single error. Only decoder failures are returned
// as errors from ParseBytes and ParseFile.
//
// # Concurrency
//
// A Parser holds no mutable state. Parse may be called from any number of
// goroutines at once.
package dataprocessing
