package topic

// synonyms maps lowercased topic variants to their canonical key. The
// table is fixed: merging happens only through these exact entries, never
// through string similarity, so two phrasings the table does not know
// about stay separate topics. Keys are the variant, values the canonical
// form; every value must itself be a fixed point (a value never appears
// as a key), which keeps normalization idempotent.
var synonyms = map[string]string{
	// pandemic phrasings
	"covid":       "covid-19",
	"covid 19":    "covid-19",
	"corona":      "covid-19",
	"coronavirus": "covid-19",
	"the rona":    "covid-19",
	"pandemic":    "covid-19",

	// vaccination phrasings
	"vaccines":     "vaccine",
	"vaccination":  "vaccine",
	"vaccinations": "vaccine",
	"vax":          "vaccine",
	"the jab":      "vaccine",

	// work phrasings
	"work project":  "work",
	"work projects": "work",
	"work stuff":    "work",
	"job":           "work",
	"the office":    "work",

	// money phrasings
	"finance":  "money",
	"finances": "money",
	"bills":    "money",

	// travel phrasings
	"vacation":  "travel",
	"vacations": "travel",
	"holiday":   "travel",
	"holidays":  "travel",
	"trip":      "travel",

	// food phrasings
	"dinner":       "food",
	"lunch":        "food",
	"dinner plans": "food",
	"restaurants":  "food",

	// celebration phrasings
	"bday":           "birthday",
	"birthday party": "birthday",
}

// canonicalKey resolves a lowercased, trimmed label to its canonical key.
// Labels the table does not mention are their own key.
func canonicalKey(lowered string) string {
	if canon, ok := synonyms[lowered]; ok {
		return canon
	}
	return lowered
}
