// Package http implements the HTTP handlers of the drillsheet service.
// Handlers stay thin: they decode the request, call a service and render
// the response. Business logic lives in internal/services.
//
// # Routes
//
//	POST /api/parse                     upload a workbook (multipart field "file")
//	GET  /api/tests/{testID}            discharge test with its site, borehole and quality
//	GET  /api/tests/{testID}/series     series pages of a test
//	GET  /api/reports/{reportID}        daily drilling report
//	GET  /api/jobs?limit=N&status=S     recent parse jobs, newest first
//	GET  /api/health                    service health
//	GET  /metrics                       Prometheus metrics
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details and are rendered by
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/workbook/unreadable",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "failed to parse workbook: failed to open workbook: zip: not a valid zip file",
//	    "instance": "/api/parse"
//	}
//
// A workbook that decodes but fails validation is not an error: the parse
// result is returned with status 200 and validation.isValid set to false.
//
// # Testing
//
// Handlers are tested with httptest against mocked services.
package http
