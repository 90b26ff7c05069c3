package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"drillsheet/pkg/contracts/domain"
)

// RecordValidator checks built domain records against their validate tags.
// It runs after extraction, so its findings are reported as warnings: the
// parser's own rules alone decide whether a result is valid.
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a validator reporting fields by JSON name.
func NewRecordValidator() *RecordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &RecordValidator{validate: v}
}

// Validate checks every record of result and returns one message per
// failing field, in record order.
func (rv *RecordValidator) Validate(result *domain.ParseResult) []string {
	if result == nil {
		return nil
	}

	var out []string
	check := func(label string, record any) {
		out = append(out, rv.check(label, record)...)
	}

	if result.Site != nil {
		check("site "+result.Site.SiteID, result.Site)
	}
	if result.Borehole != nil {
		check("borehole "+result.Borehole.BoreholeID, result.Borehole)
	}
	if result.Test != nil {
		check("test "+result.Test.TestID, result.Test)
	}
	if result.Report != nil {
		check("report "+result.Report.ReportID, result.Report)
	}
	for i := range result.Series {
		check("series "+result.Series[i].SeriesID, &result.Series[i])
	}
	for i := range result.Quality {
		check("quality "+result.Quality[i].QualityID, &result.Quality[i])
	}
	return out
}

func (rv *RecordValidator) check(label string, record any) []string {
	err := rv.validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{fmt.Sprintf("%s: %v", label, err)}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s %s", label, fieldPath(fe), describe(fe)))
	}
	return msgs
}

// fieldPath drops the root type name from the namespace, e.g.
// "Series.points[2].t_min" becomes "points[2].t_min".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
