package normalize

import (
	"testing"
	"time"

	"github.com/facultytools/vitae/internal/model"
)

func TestResolveYear(t *testing.T) {
	tests := []struct {
		fields map[string]string
		want   *model.YearRef
		name   string
	}{
		{
			name:   "explicit year field wins",
			fields: map[string]string{"year": "2015", "dates": "January 2010 - December 2012"},
			want:   &model.YearRef{Value: 2015},
		},
		{
			name:   "years field accepted",
			fields: map[string]string{"years": "1998"},
			want:   &model.YearRef{Value: 1998},
		},
		{
			name:   "year below range rejected, falls through",
			fields: map[string]string{"year": "1850"},
			want:   nil,
		},
		{
			name:   "year too far in the future rejected",
			fields: map[string]string{"year": "3000"},
			want:   nil,
		},
		{
			name:   "date range takes the end year",
			fields: map[string]string{"dates": "January 2010 - December 2014"},
			want:   &model.YearRef{Value: 2014},
		},
		{
			name:   "range ending in Current is the sentinel",
			fields: map[string]string{"dates": "January 2020 - Current"},
			want:   &model.YearRef{Current: true},
		},
		{
			name:   "range ending in Present is the sentinel too",
			fields: map[string]string{"dates": "2018 – Present"},
			want:   &model.YearRef{Current: true},
		},
		{
			name:   "single month-year date",
			fields: map[string]string{"date": "August 2005"},
			want:   &model.YearRef{Value: 2005},
		},
		{
			name:   "bare year in a date field",
			fields: map[string]string{"publication_date": "2019"},
			want:   &model.YearRef{Value: 2019},
		},
		{
			name:   "bare year range",
			fields: map[string]string{"dates": "2019-2021"},
			want:   &model.YearRef{Value: 2021},
		},
		{
			name:   "no usable year",
			fields: map[string]string{"title": "Something"},
			want:   nil,
		},
		{
			name:   "date with no trailing year",
			fields: map[string]string{"date": "Spring semester"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveYear(tt.fields)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ResolveYear() = %+v, want nil", got)
			case tt.want != nil && got == nil:
				t.Errorf("ResolveYear() = nil, want %+v", tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("ResolveYear() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveYearAcceptsCurrentYear(t *testing.T) {
	fields := map[string]string{"year": time.Now().Format("2006")}
	got := ResolveYear(fields)
	if got == nil || got.Value != time.Now().Year() {
		t.Errorf("ResolveYear() = %+v, want current year", got)
	}
}

func TestResolveAmount(t *testing.T) {
	tests := []struct {
		fields     map[string]string
		name       string
		wantAmount float64
		wantOK     bool
	}{
		{
			name:       "plain number",
			fields:     map[string]string{"amount": "50000"},
			wantAmount: 50000,
			wantOK:     true,
		},
		{
			name:       "currency formatting stripped",
			fields:     map[string]string{"amount": "$1,250,000.50"},
			wantAmount: 1250000.50,
			wantOK:     true,
		},
		{
			name:       "fallback to total_amount",
			fields:     map[string]string{"total_amount": "75000"},
			wantAmount: 75000,
			wantOK:     true,
		},
		{
			name:   "missing amount",
			fields: map[string]string{"title": "x"},
			wantOK: false,
		},
		{
			name:   "non-numeric amount",
			fields: map[string]string{"amount": "pending"},
			wantOK: false,
		},
		{
			name:   "zero is no amount",
			fields: map[string]string{"amount": "0"},
			wantOK: false,
		},
		{
			name:   "negative is no amount",
			fields: map[string]string{"amount": "-500"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := ResolveAmount(tt.fields)
			if ok != tt.wantOK {
				t.Fatalf("ResolveAmount() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && amount != tt.wantAmount {
				t.Errorf("ResolveAmount() = %v, want %v", amount, tt.wantAmount)
			}
		})
	}
}
