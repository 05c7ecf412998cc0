// Package registry holds the canonical municipal department table:
// identifiers, display names, keyword sets and per-department
// resolution windows. The table is immutable reference data loaded at
// process start; iteration order is fixed so that classification
// tie-breaks are reproducible.
package registry

import (
	"strings"
	"time"

	"grievancedesk/internal/domain"
)

// DefaultResolution is the SLA window applied when a grievance carries
// a department id the registry does not know. Monitoring must always be
// defined, so unknown departments degrade to a 24h window instead of
// failing.
const DefaultResolution = 24 * time.Hour

type Department struct {
	ID             string
	Name           string
	Description    string
	Keywords       []string // lower-cased tokens/phrases, multilingual
	ResolutionTime time.Duration
	Priority       domain.Priority
}

// departments is ordered; Classify tie-breaks keep the first entry with
// the highest score, so this order is part of the observable contract.
var departments = []Department{
	{
		ID:          "dept_electrical",
		Name:        "Electrical Maintenance Department",
		Description: "Street lights, electrical poles, power supply issues",
		Keywords: []string{
			"light", "fan", "power", "electric", "current", "wire", "bulb",
			"switch", "electricity", "voltage", "transformer", "pole",
			// Hindi
			"बत्ती", "लाइट", "बिजली", "करंट", "पंखा", "ट्रांसफार्मर", "प्रकाश", "वीज",
			// Romanized Hindi / Hinglish
			"batti", "bijli", "light nahi", "bijli nahi", "current nahi",
			"light chali gayi", "bijli gayi", "power cut", "pole gir gaya",
			"pankha", "light jal rahi", "bulb phut gaya",
			// Telugu
			"లైట్", "విద్యుత్", "కరెంట్", "ఫ్యాన్",
			// Kannada
			"ಬೆಳಕು", "ವಿದ್ಯುತ್", "ಫ್ಯಾನ್",
			// Malayalam
			"വെളിച്ചം", "വൈദ്യുതി", "ഫാൻ",
		},
		ResolutionTime: 48 * time.Hour,
		Priority:       domain.PriorityHigh,
	},
	{
		ID:          "dept_water",
		Name:        "Water Supply & Sewerage Department",
		Description: "Water supply, drainage, sewerage issues",
		Keywords: []string{
			"water", "pipe", "leak", "tap", "drain", "sewer", "plumbing",
			"sewage", "sanitation", "overflow", "blockage",
			// Hindi
			"पानी", "नल", "पाइप", "लीक", "नाली", "जल", "पाणी",
			// Romanized Hindi / Hinglish
			"paani", "pani", "nal", "naali", "nali", "drainage", "paani nahi",
			"water nahi", "nal se paani", "pipe phut gaya", "water supply",
			"water leakage", "naali overflow", "gutter", "sewerage",
			"drain block", "supply band hai",
			// Telugu
			"నీరు", "కుళాయి", "పైపు", "డ్రైనేజీ",
			// Kannada
			"ನೀರು", "ಟ್ಯಾಪ್", "ಪೈಪ್",
			// Malayalam
			"വെള്ളം", "കുഴൽ", "ടാപ്പ്",
		},
		ResolutionTime: 5 * time.Hour,
		Priority:       domain.PriorityHigh,
	},
	{
		ID:          "dept_it",
		Name:        "Information Technology Services Department",
		Description: "IT infrastructure, digital services, connectivity",
		Keywords: []string{
			"wifi", "internet", "network", "computer", "connection",
			"server", "website", "online", "digital", "portal",
			// Hindi
			"इंटरनेट", "वाईफाई", "कंप्यूटर", "नेटवर्क",
			// Romanized Hindi / Hinglish
			"wifi nahi", "internet slow", "network problem",
			"connection issue", "internet nahi chal raha", "broadband",
			"wifi ka problem", "net slow hai", "website nahi khul raha",
			"online nahi ho raha",
			// Telugu
			"ఇంటర్నెట్", "వైఫై", "కంప్యూటర్",
			// Kannada
			"ಇಂಟರ್ನೆಟ್", "ವೈಫೈ",
			// Malayalam
			"ഇന്റർനെറ്റ്", "വൈഫൈ",
		},
		ResolutionTime: 72 * time.Hour,
		Priority:       domain.PriorityMedium,
	},
	{
		ID:          "dept_infrastructure",
		Name:        "Infrastructure Maintenance Department",
		Description: "Roads, buildings, public infrastructure",
		Keywords: []string{
			"repair", "broken", "damage", "fix", "maintenance", "road",
			"building", "construction", "crack", "pothole", "pavement",
			// Hindi
			"रोड", "रस्ता", "गड्ढा", "सड़क", "मरम्मत", "मार्ग", "इमारत",
			// Romanized Hindi / Hinglish
			"sadak", "rasta", "gadda", "gaddha", "road kharab", "sadak tuti",
			"footpath", "road repair", "sadak ki halat", "road condition",
			"crack aa gaya", "toot gaya", "damage hua", "broken hai",
			"kharab hai",
			// Telugu
			"రోడ్డు", "గొయ్యి", "బిల్డింగ్",
			// Kannada
			"ರಸ್ತೆ", "ಕುಂಡಿ", "ಕಟ್ಟಡ",
			// Malayalam
			"റോഡ്", "കുഴി", "കെട്ടിടം",
		},
		ResolutionTime: 7 * 24 * time.Hour,
		Priority:       domain.PriorityLow,
	},
	{
		ID:          "dept_waste",
		Name:        "Solid Waste Management Department",
		Description: "Waste collection, cleanliness, sanitation",
		Keywords: []string{
			"clean", "garbage", "trash", "dirty", "litter", "waste",
			"dustbin", "sweeping", "disposal", "collection",
			// Hindi
			"कचरा", "गंदगी", "सफाई", "कूड़ा", "डस्टबिन", "कूड़ादान", "स्वच्छता",
			// Romanized Hindi / Hinglish
			"kachra", "kachraa", "kuda", "gandagi", "safai", "cleaning",
			"kachra collection", "garbage nahi uthaya", "dustbin bhara hua",
			"gandagi hai", "safai nahi ho rahi", "waste collection",
			"kuda pada hai", "sweeper nahi aaya", "cleaning nahi hui",
			"ganda hai", "dirty hai", "litter pada hai",
			// Telugu
			"చెత్త", "వ్యర్థాలు", "శుభ్రత",
			// Kannada
			"ಕಸ", "ಕೊಳಕು", "ಸ್ವಚ್ಛತೆ",
			// Malayalam
			"മാലിന്യം", "മാലിന്യനിര്‍മാര്‍ജനം",
		},
		ResolutionTime: 48 * time.Hour,
		Priority:       domain.PriorityMedium,
	},
}

var byID = func() map[string]*Department {
	m := make(map[string]*Department, len(departments))
	for i := range departments {
		m[departments[i].ID] = &departments[i]
	}
	return m
}()

// All returns the departments in registry order. Callers must not
// modify the returned slice.
func All() []Department {
	return departments
}

func ByID(id string) (Department, bool) {
	d, ok := byID[id]
	if !ok {
		return Department{}, false
	}
	return *d, true
}

func Known(id string) bool {
	_, ok := byID[id]
	return ok
}

// ResolutionTime returns the SLA window for a department, falling back
// to DefaultResolution for unknown ids.
func ResolutionTime(id string) time.Duration {
	if d, ok := byID[id]; ok {
		return d.ResolutionTime
	}
	return DefaultResolution
}

// categoryTokens maps a distinguishing token of each department name to
// its id, for flexible matching of service-returned names.
var categoryTokens = []struct {
	token string
	id    string
}{
	{"electrical", "dept_electrical"},
	{"water", "dept_water"},
	{"information", "dept_it"},
	{"it ", "dept_it"},
	{"infrastructure", "dept_infrastructure"},
	{"waste", "dept_waste"},
}

// MatchName resolves a department name as returned by the remote
// classifier to a registry entry. Exact case-insensitive match is tried
// first, then partial matching on the distinguishing category token,
// since models frequently shorten or reword the official names.
func MatchName(name string) (Department, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Department{}, false
	}
	for _, d := range departments {
		if strings.ToLower(d.Name) == name {
			return d, true
		}
	}
	for _, ct := range categoryTokens {
		if strings.Contains(name, ct.token) {
			d, _ := ByID(ct.id)
			return d, true
		}
	}
	return Department{}, false
}
