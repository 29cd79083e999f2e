package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// NewValidator создает валидатор с общими для всех DTO правилами:
// имена полей берутся из json-тегов, доступно правило notblank и правило сериалов.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// Регистрация не может завершиться ошибкой для непустого тега.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterStructValidation(seriesCountsRule, Work{})
	return v
}

// seriesCountsRule: seasonsCount и episodesCount обязательны только для сериалов.
func seriesCountsRule(sl validator.StructLevel) {
	w := sl.Current().Interface().(Work)
	if w.Type != WorkTypeSeries {
		return
	}
	if w.SeasonsCount == nil {
		sl.ReportError(w.SeasonsCount, "seasonsCount", "SeasonsCount", "required_for_series", "")
	}
	if w.EpisodesCount == nil {
		sl.ReportError(w.EpisodesCount, "episodesCount", "EpisodesCount", "required_for_series", "")
	}
}

// FromValidation переводит ошибки validator в ошибку VALIDATION с деталями.
func FromValidation(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation(err.Error())
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{Field: fieldPath(fe), Rule: fe.Tag(), Param: fe.Param()})
	}
	return Validation("Validation failed", details...)
}

// fieldPath отбрасывает имя корневой структуры: "Work.cast[0]" -> "cast[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
