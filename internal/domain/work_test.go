package domain

import (
	"encoding/json"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastList_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want CastList
	}{
		{"array", `["Adel Imam", " Yousra "]`, CastList{"Adel Imam", "Yousra"}},
		{"drops non strings and blanks", `["Adel Imam", 7, "", null]`, CastList{"Adel Imam"}},
		{"json encoded string", `"[\"Hend Sabry\"]"`, CastList{"Hend Sabry"}},
		{"single name string", `"Nour El-Sherif"`, CastList{"Nour El-Sherif"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got CastList
			require.NoError(t, json.Unmarshal([]byte(tc.in), &got))
			assert.Equal(t, tc.want, got)
		})
	}

	var bad CastList
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &bad))
}

func TestParseCastList(t *testing.T) {
	got, err := ParseCastList("  ")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseCastList("[broken")
	assert.Error(t, err)
}

func validWork() Work {
	return Work{
		Type:              WorkTypeFilm,
		NameArabic:        "الكيت كات",
		NameEnglish:       "Kit Kat",
		Year:              1991,
		Director:          "Daoud Abdel Sayed",
		AssistantDirector: "Someone",
		Genre:             "Drama",
		Cast:              pq.StringArray{"Mahmoud Abdel Aziz"},
		Country:           "Egypt",
		FilmingLocation:   "Cairo",
		Summary:           "A blind man in Imbaba.",
	}
}

func TestValidator_SeriesCounts(t *testing.T) {
	v := NewValidator()

	w := validWork()
	require.NoError(t, v.Struct(w))

	w.Type = WorkTypeSeries
	err := v.Struct(w)
	require.Error(t, err)
	verr := FromValidation(err)
	assert.Equal(t, KindValidation, verr.Kind)
	fields := make([]string, 0, len(verr.Details))
	for _, d := range verr.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"seasonsCount", "episodesCount"}, fields)

	one := 1
	w.SeasonsCount, w.EpisodesCount = &one, &one
	assert.NoError(t, v.Struct(w))
}

func TestValidator_FieldPaths(t *testing.T) {
	w := validWork()
	w.Cast = pq.StringArray{"ok", "  "}
	w.Director = " "

	verr := FromValidation(NewValidator().Struct(w))
	fields := map[string]string{}
	for _, d := range verr.Details {
		fields[d.Field] = d.Rule
	}
	assert.Equal(t, "notblank", fields["cast[1]"])
	assert.Equal(t, "notblank", fields["director"])
}

func TestUpdateWorkRequest_Apply(t *testing.T) {
	w := validWork()
	w.CreatedBy = "owner"
	w.PosterPublicID = "old"

	name := "  New name "
	poster := "https://img.test/p.png"
	other := "intruder"
	req := UpdateWorkRequest{NameEnglish: &name, PosterURL: &poster, CreatedBy: &other}
	req.Apply(&w)

	assert.Equal(t, "New name", w.NameEnglish)
	assert.Equal(t, poster, w.PosterURL)
	assert.Empty(t, w.PosterPublicID)
	assert.Equal(t, "owner", w.CreatedBy)
}
