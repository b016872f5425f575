package dataset

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================================
// CLEANING TESTS
// ============================================================================

// Eight rows shaped like the live extract: nulls in the perpetrator columns
// (both spellings), a recorded UNKNOWN level, a malformed date, and incidents
// across three years and all five boroughs.
var shootingCSV = []byte(`INCIDENT_KEY,OCCUR_DATE,OCCUR_TIME,BORO,LOC_OF_OCCUR_DESC,PRECINCT,JURISDICTION_CODE,LOC_CLASSFCTN_DESC,LOCATION_DESC,STATISTICAL_MURDER_FLAG,PERP_AGE_GROUP,PERP_SEX,PERP_RACE,VIC_AGE_GROUP,VIC_SEX,VIC_RACE,X_COORD_CD,Y_COORD_CD,Latitude,Longitude,Lon_Lat
236168668,11/11/2021,15:04:00,BROOKLYN,OUTSIDE,79,0,STREET,GROCERY/BODEGA,false,18-24,M,BLACK,25-44,M,BLACK,996313,187499,40.681381,-73.956345,POINT (-73.956345 40.681381)
231008085,06/09/2021,22:30:00,BRONX,OUTSIDE,40,0,STREET,,true,,(null),,18-24,M,BLACK HISPANIC,1005028,234516,40.810352,-73.924942,POINT (-73.924942 40.810352)
230717903,05/30/2021,00:15:00,QUEENS,INSIDE,113,0,DWELLING,MULTI DWELL - APT BUILD,false,25-44,M,WHITE HISPANIC,25-44,F,BLACK,1045083,186631,40.678608,-73.780426,POINT (-73.780426 40.678608)
224465521,01/01/2021,02:45:13,MANHATTAN,OUTSIDE,28,0,STREET,,false,UNKNOWN,U,UNKNOWN,18-24,M,BLACK,997470,231308,40.801594,-73.952087,POINT (-73.952087 40.801594)
218391236,10/21/2020,21:36:00,STATEN ISLAND,OUTSIDE,121,0,COMMERCIAL,BAR/NIGHT CLUB,true,45-64,M,WHITE,45-64,M,WHITE,946943,171593,40.637504,-74.134537,POINT (-74.134537 40.637504)
214413649,06/27/2020,23:57:00,BROOKLYN,OUTSIDE,73,2,STREET,,false,,,,25-44,M,BLACK,1007063,185119,40.674801,-73.917588,POINT (-73.917588 40.674801)
199969025,08/14/2019,17:22:00,BRONX,OUTSIDE,44,0,STREET,GROCERY/BODEGA,false,18-24,M,BLACK,18-24,M,BLACK HISPANIC,1005500,241640,40.829916,-73.922714,POINT (-73.922714 40.829916)
190737402,13/45/2019,12:00:00,QUEENS,OUTSIDE,103,0,STREET,,false,25-44,M,BLACK,25-44,M,BLACK,1037000,197000,40.707344,-73.809343,POINT (-73.809343 40.707344)
`)

func mustClean(t *testing.T, data []byte) (*Table, CleanStats) {
	t.Helper()
	df, err := LoadBytes(data)
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	tbl, stats, err := Clean(df)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	return tbl, stats
}

func TestCleanPreservesRowCount(t *testing.T) {
	tbl, stats := mustClean(t, shootingCSV)

	if stats.Rows != 8 {
		t.Errorf("stats.Rows = %d, want 8", stats.Rows)
	}
	if tbl.Nrow() != 8 {
		t.Errorf("Nrow = %d, want 8", tbl.Nrow())
	}
}

func TestCleanColumnSet(t *testing.T) {
	tbl, stats := mustClean(t, shootingCSV)

	// The identifier and location description columns are gone.
	dropped := []string{"incident_key", "loc_of_occur_desc", "loc_classfctn_desc", "location_desc"}
	for _, name := range dropped {
		if tbl.Has(name) {
			t.Errorf("column %s should have been dropped", name)
		}
	}
	if len(stats.DroppedColumns) != len(dropped) {
		t.Errorf("DroppedColumns = %v, want %v", stats.DroppedColumns, dropped)
	}

	// The coordinates stay, and the derived columns exist.
	kept := []string{"x_coord_cd", "y_coord_cd", "latitude", "longitude", "lon_lat",
		DerivedYear, DerivedHour}
	for _, name := range kept {
		if !tbl.Has(name) {
			t.Errorf("column %s should be present", name)
		}
	}

	// 21 source columns, minus 4 dropped, plus 2 derived.
	if got := len(tbl.Columns()); got != 19 {
		t.Errorf("column count = %d (%v), want 19", got, tbl.Columns())
	}
}

func TestCleanFillsPerpetratorNulls(t *testing.T) {
	tbl, stats := mustClean(t, shootingCSV)

	for _, name := range FilledColumns() {
		for i := 0; i < tbl.Nrow(); i++ {
			if tbl.Cell(i, name) == "" {
				t.Errorf("row %d: %s is still null after cleaning", i, name)
			}
		}
		if stats.FilledUnknown[name] != 2 {
			t.Errorf("FilledUnknown[%s] = %d, want 2", name, stats.FilledUnknown[name])
		}
	}
	if stats.FilledTotal() != 6 {
		t.Errorf("FilledTotal = %d, want 6", stats.FilledTotal())
	}

	// Both null spellings become the sentinel; the recorded UNKNOWN level
	// is left alone.
	if got := tbl.Cell(1, "perp_race"); got != Unknown {
		t.Errorf("row 1 perp_race = %q, want %q", got, Unknown)
	}
	if got := tbl.Cell(1, "perp_sex"); got != Unknown {
		t.Errorf("row 1 perp_sex = %q, want %q (was \"(null)\")", got, Unknown)
	}
	if got := tbl.Cell(3, "perp_race"); got != "UNKNOWN" {
		t.Errorf("row 3 perp_race = %q, want recorded UNKNOWN", got)
	}

	// Victim columns are not filled: no victim cell in the fixture is null,
	// and none should have turned into the sentinel.
	for _, name := range []string{"vic_age_group", "vic_sex", "vic_race"} {
		for i := 0; i < tbl.Nrow(); i++ {
			if tbl.Cell(i, name) == Unknown {
				t.Errorf("row %d: %s = %q, victim columns must not be filled", i, name, Unknown)
			}
		}
	}
}

func TestCleanParsesDates(t *testing.T) {
	tbl, stats := mustClean(t, shootingCSV)

	if got := tbl.Cell(0, "occur_date"); got != "2021-11-11" {
		t.Errorf("row 0 occur_date = %q, want 2021-11-11", got)
	}
	if got := tbl.Cell(0, DerivedYear); got != "2021" {
		t.Errorf("row 0 %s = %q, want 2021", DerivedYear, got)
	}
	if got := tbl.Cell(6, DerivedYear); got != "2019" {
		t.Errorf("row 6 %s = %q, want 2019", DerivedYear, got)
	}

	// Month 13 does not parse: the cell is nulled and counted, not fatal.
	if stats.MalformedDates != 1 {
		t.Errorf("MalformedDates = %d, want 1", stats.MalformedDates)
	}
	if got := tbl.Cell(7, "occur_date"); got != "" {
		t.Errorf("row 7 occur_date = %q, want null", got)
	}
	if got := tbl.Cell(7, DerivedYear); got != "" {
		t.Errorf("row 7 %s = %q, want null", DerivedYear, got)
	}
}

func TestCleanParsesTimes(t *testing.T) {
	tbl, stats := mustClean(t, shootingCSV)

	if stats.MalformedTimes != 0 {
		t.Errorf("MalformedTimes = %d, want 0", stats.MalformedTimes)
	}

	tests := []struct {
		row  int
		hour string
	}{
		{0, "15"},
		{2, "0"},
		{3, "2"},
		{5, "23"},
		{7, "12"},
	}
	for _, tt := range tests {
		if got := tbl.Cell(tt.row, DerivedHour); got != tt.hour {
			t.Errorf("row %d %s = %q, want %q", tt.row, DerivedHour, got, tt.hour)
		}
	}

	if got := tbl.Cell(0, "occur_time"); got != "15:04:00" {
		t.Errorf("row 0 occur_time = %q, want 15:04:00", got)
	}
}

func TestCleanCategoricalLevels(t *testing.T) {
	tbl, _ := mustClean(t, shootingCSV)

	cats := CategoricalColumns()
	if len(cats) != 9 {
		t.Fatalf("CategoricalColumns() = %v, want 9 columns", cats)
	}
	for _, name := range cats {
		if len(tbl.Levels(name)) == 0 {
			t.Errorf("column %s has no levels", name)
		}
	}

	// Levels register in first-encounter order.
	wantBoros := []string{"BROOKLYN", "BRONX", "QUEENS", "MANHATTAN", "STATEN ISLAND"}
	gotBoros := tbl.Levels("boro")
	if len(gotBoros) != len(wantBoros) {
		t.Fatalf("boro levels = %v, want %v", gotBoros, wantBoros)
	}
	for i := range wantBoros {
		if gotBoros[i] != wantBoros[i] {
			t.Errorf("boro level %d = %q, want %q", i, gotBoros[i], wantBoros[i])
		}
	}

	// The filled sentinel and the recorded UNKNOWN stay distinct levels.
	ages := tbl.Levels("perp_age_group")
	if !containsLevel(ages, Unknown) || !containsLevel(ages, "UNKNOWN") {
		t.Errorf("perp_age_group levels = %v, want both %q and UNKNOWN", ages, Unknown)
	}

	// The murder flag survives the cast as two lowercase levels.
	flags := tbl.Levels("statistical_murder_flag")
	if !containsLevel(flags, "true") || !containsLevel(flags, "false") {
		t.Errorf("statistical_murder_flag levels = %v, want true and false", flags)
	}

	t.Logf("%d categorical columns, boro levels: %v", len(cats), gotBoros)
}

func TestCleanSchemaDrift(t *testing.T) {
	// Remove a declared column from the header and its cells from every row.
	lines := strings.Split(strings.TrimSpace(string(shootingCSV)), "\n")
	for i, line := range lines {
		fields := strings.Split(line, ",")
		fields = append(fields[:12], fields[13:]...) // PERP_RACE
		lines[i] = strings.Join(fields, ",")
	}

	df, err := LoadBytes([]byte(strings.Join(lines, "\n") + "\n"))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	_, _, err = Clean(df)
	if err == nil {
		t.Fatal("Clean should fail when a declared column is missing")
	}
	if !errors.Is(err, ErrSchemaDrift) {
		t.Errorf("error = %v, want ErrSchemaDrift", err)
	}
	if !strings.Contains(err.Error(), "PERP_RACE") {
		t.Errorf("error %q should name the missing column", err)
	}
}

func TestCleanToleratesExtraColumns(t *testing.T) {
	// The portal occasionally appends columns; they are ignored, not fatal.
	lines := strings.Split(strings.TrimSpace(string(shootingCSV)), "\n")
	lines[0] += ",New Georeferenced Column"
	for i := 1; i < len(lines); i++ {
		lines[i] += ",extra"
	}

	df, err := LoadBytes([]byte(strings.Join(lines, "\n") + "\n"))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	tbl, _, err := Clean(df)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if tbl.Has("new_georeferenced_column") {
		t.Error("undeclared column should not survive cleaning")
	}
	if got := len(tbl.Columns()); got != 19 {
		t.Errorf("column count = %d, want 19", got)
	}
}

// Four well-formed rows, one null perp_race and nothing else missing.
var smallCSV = []byte(`INCIDENT_KEY,OCCUR_DATE,OCCUR_TIME,BORO,LOC_OF_OCCUR_DESC,PRECINCT,JURISDICTION_CODE,LOC_CLASSFCTN_DESC,LOCATION_DESC,STATISTICAL_MURDER_FLAG,PERP_AGE_GROUP,PERP_SEX,PERP_RACE,VIC_AGE_GROUP,VIC_SEX,VIC_RACE,X_COORD_CD,Y_COORD_CD,Latitude,Longitude,Lon_Lat
236168668,11/11/2021,15:04:00,BROOKLYN,OUTSIDE,79,0,STREET,GROCERY/BODEGA,false,18-24,M,BLACK,25-44,M,BLACK,996313,187499,40.681381,-73.956345,POINT (-73.956345 40.681381)
231008085,06/09/2021,22:30:00,BRONX,OUTSIDE,40,0,STREET,BAR/NIGHT CLUB,true,18-24,M,,18-24,M,BLACK HISPANIC,1005028,234516,40.810352,-73.924942,POINT (-73.924942 40.810352)
230717903,05/30/2021,00:15:00,QUEENS,INSIDE,113,0,DWELLING,MULTI DWELL - APT BUILD,false,25-44,M,WHITE HISPANIC,25-44,F,BLACK,1045083,186631,40.678608,-73.780426,POINT (-73.780426 40.678608)
218391236,10/21/2020,21:36:00,STATEN ISLAND,OUTSIDE,121,0,COMMERCIAL,BAR/NIGHT CLUB,true,45-64,M,WHITE,45-64,M,WHITE,946943,171593,40.637504,-74.134537,POINT (-74.134537 40.637504)
`)

func TestCleanSmallTableEndToEnd(t *testing.T) {
	tbl, stats := mustClean(t, smallCSV)

	if tbl.Nrow() != 4 {
		t.Fatalf("row count = %d, want 4", tbl.Nrow())
	}
	if got := tbl.Cell(1, "perp_race"); got != Unknown {
		t.Errorf("null perp_race = %q, want %q", got, Unknown)
	}
	if stats.FilledUnknown["perp_race"] != 1 {
		t.Errorf("perp_race fills = %d, want 1", stats.FilledUnknown["perp_race"])
	}
	if stats.FilledUnknown["perp_age_group"] != 0 || stats.FilledUnknown["perp_sex"] != 0 {
		t.Error("no other perpetrator column should have been filled")
	}

	// The rest of the filled row is untouched.
	want := map[string]string{
		"boro":                    "BRONX",
		"precinct":                "40",
		"jurisdiction_code":       "0",
		"statistical_murder_flag": "true",
		"perp_age_group":          "18-24",
		"perp_sex":                "M",
		"vic_age_group":           "18-24",
		"vic_sex":                 "M",
		"vic_race":                "BLACK HISPANIC",
		"occur_time":              "22:30:00",
		"latitude":                "40.810352",
		"longitude":               "-73.924942",
	}
	for col, v := range want {
		if got := tbl.Cell(1, col); got != v {
			t.Errorf("cell(1, %s) = %q, want %q", col, got, v)
		}
	}

	// Neighbouring rows keep their recorded values.
	if got := tbl.Cell(0, "perp_race"); got != "BLACK" {
		t.Errorf("cell(0, perp_race) = %q, want BLACK", got)
	}
	if got := tbl.Cell(2, "perp_race"); got != "WHITE HISPANIC" {
		t.Errorf("cell(2, perp_race) = %q, want WHITE HISPANIC", got)
	}
	if got := tbl.Cell(3, "occur_date"); got != "2020-10-21" {
		t.Errorf("cell(3, occur_date) = %q, want 2020-10-21", got)
	}
}

func TestLoadRejectsEmptyInput(t *testing.T) {
	if _, err := LoadBytes([]byte("")); err == nil {
		t.Error("LoadBytes should fail on empty input")
	}

	header := strings.SplitN(string(shootingCSV), "\n", 2)[0] + "\n"
	if _, err := LoadBytes([]byte(header)); err == nil {
		t.Error("LoadBytes should fail on a header-only extract")
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func containsLevel(levels []string, want string) bool {
	for _, l := range levels {
		if l == want {
			return true
		}
	}
	return false
}
