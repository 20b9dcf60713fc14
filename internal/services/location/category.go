package location

import (
	"strings"

	"github.com/mcoot/crimeguessr/internal/model"
)

// Keyword groups are checked in order; the first match wins
var categoryKeywords = []struct {
	category model.CrimeCategory
	keywords []string
}{
	{model.CategoryViolent, []string{
		"MURDER", "HOMICIDE", "RAPE", "SEX CRIME", "ROBBERY", "ASSAULT",
		"KIDNAPPING", "WEAPON", "HARRASSMENT", "HARASSMENT",
	}},
	{model.CategoryDrug, []string{"DRUG", "CANNABIS", "MARIJUANA", "CONTROLLED SUBSTANCE"}},
	{model.CategoryProperty, []string{
		"LARCENY", "BURGLARY", "THEFT", "MISCHIEF", "ARSON", "STOLEN PROPERTY",
		"FRAUD", "FORGERY", "TRESPASS", "MOTOR VEHICLE",
	}},
	{model.CategoryPublicOrder, []string{
		"PUBLIC ORDER", "DISORDERLY", "INTOXICATED", "LOITERING", "GAMBLING",
		"ALCOHOL", "ADMINISTRATIVE CODE", "PUBLIC SAFETY",
	}},
}

// Categorize maps an offense description to a coarse category. An empty
// description has no category.
func Categorize(offense string) model.CrimeCategory {
	o := strings.ToUpper(strings.TrimSpace(offense))
	if o == "" {
		return ""
	}
	for _, group := range categoryKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(o, kw) {
				return group.category
			}
		}
	}
	return model.CategoryOther
}
