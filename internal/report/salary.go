package report

import "math"

type lpaRange struct {
	min, max float64
}

// roleBaseLPA holds base salary ranges in lakhs per annum by role and
// experience band.
var roleBaseLPA = map[string]map[string]lpaRange{
	"Backend Developer": {
		"fresher": {4, 8}, "1-3_years": {8, 16}, "3-5_years": {12, 25}, "5+_years": {18, 40},
	},
	"Frontend Developer": {
		"fresher": {3, 7}, "1-3_years": {6, 14}, "3-5_years": {10, 22}, "5+_years": {15, 35},
	},
	"Full Stack Developer": {
		"fresher": {5, 10}, "1-3_years": {10, 20}, "3-5_years": {15, 30}, "5+_years": {20, 45},
	},
	"DevOps Engineer": {
		"fresher": {6, 12}, "1-3_years": {12, 24}, "3-5_years": {18, 35}, "5+_years": {25, 50},
	},
	"Data Analyst": {
		"fresher": {3, 6}, "1-3_years": {6, 12}, "3-5_years": {10, 20}, "5+_years": {15, 35},
	},
	"System Administrator": {
		"fresher": {3, 5}, "1-3_years": {5, 10}, "3-5_years": {8, 16}, "5+_years": {12, 25},
	},
	"QA Engineer": {
		"fresher": {2, 5}, "1-3_years": {4, 9}, "3-5_years": {7, 15}, "5+_years": {10, 22},
	},
	"Machine Learning Engineer": {
		"fresher": {6, 15}, "1-3_years": {12, 25}, "3-5_years": {20, 40}, "5+_years": {30, 70},
	},
}

var defaultBaseLPA = lpaRange{6, 15}

var companyMultipliers = map[string]float64{
	"startup":        0.8,
	"mid_size":       1.0,
	"mature_startup": 1.2,
	"product_based":  1.5,
	"faang":          2.0,
}

var cityAdjustments = map[string]float64{
	"tier3":     0.7,
	"tier2":     0.9,
	"tier1":     1.0,
	"metro":     1.2,
	"bangalore": 1.1,
	"hyderabad": 1.0,
	"pune":      0.95,
	"chennai":   0.9,
	"delhi":     1.05,
	"mumbai":    1.15,
}

// SalaryRange is the adjusted LPA band.
type SalaryRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// GrowthPotential estimates salary growth over time, in percent.
type GrowthPotential struct {
	Immediate     float64 `json:"immediate"`
	OneYear       float64 `json:"one_year"`
	TwoYears      float64 `json:"two_years"`
	PeakPotential float64 `json:"peak_potential"`
}

// SalaryEstimate is the full salary assessment.
type SalaryEstimate struct {
	Range             SalaryRange     `json:"salary_range"`
	Expected          float64         `json:"expected_salary"`
	Confidence        float64         `json:"confidence_score"`
	ExperienceLevel   string          `json:"experience_level"`
	CompanyAdjustment float64         `json:"company_adjustment"`
	CityAdjustment    float64         `json:"city_adjustment"`
	Growth            GrowthPotential `json:"growth_potential"`
}

// SalaryInput carries the factors the estimator weighs.
type SalaryInput struct {
	JobReadiness    float64 // 0-100
	Role            string
	TopicDepth      float64
	Consistency     float64
	QuizComplexity  float64
	ExperienceYears float64
	CompanyType     string
	City            string
}

// EstimateSalary maps readiness and role onto an LPA range with company and
// city adjustments.
func EstimateSalary(in SalaryInput) SalaryEstimate {
	expLevel := experienceLevel(in.ExperienceYears)

	base := defaultBaseLPA
	if bands, ok := roleBaseLPA[in.Role]; ok {
		if r, ok := bands[expLevel]; ok {
			base = r
		}
	}

	// Competence shifts the band inside itself: depth, consistency, and the
	// quiz's complexity each widen the justified ask a little.
	competence := clamp01(in.TopicDepth*0.4 + in.Consistency*0.3 + in.QuizComplexity*0.3)
	readiness := clamp01(in.JobReadiness / 100)
	shift := (competence*0.6 + readiness*0.4) * 0.25

	adjustedMin := base.min * (1 + shift*0.5)
	adjustedMax := base.max * (1 + shift)

	companyMult, ok := companyMultipliers[in.CompanyType]
	if !ok {
		companyMult = 1.0
	}
	adjustedMin *= companyMult
	adjustedMax *= companyMult

	cityMult, ok := cityAdjustments[in.City]
	if !ok {
		cityMult = 1.0
	}
	adjustedMin *= cityMult
	adjustedMax *= cityMult

	adjustedMin = math.Max(2, math.Min(100, adjustedMin))
	adjustedMax = math.Max(adjustedMin+2, math.Min(150, adjustedMax))

	expected := adjustedMin*0.3 + adjustedMax*0.7

	return SalaryEstimate{
		Range: SalaryRange{
			Min:      round1(adjustedMin),
			Max:      round1(adjustedMax),
			Currency: "LPA (Lakhs Per Annum)",
		},
		Expected:          round1(expected),
		Confidence:        round1(math.Min(95, in.Consistency*100)),
		ExperienceLevel:   expLevel,
		CompanyAdjustment: companyMult,
		CityAdjustment:    cityMult,
		Growth:            growthPotential(adjustedMax, expected, in.ExperienceYears),
	}
}

func experienceLevel(years float64) string {
	switch {
	case years <= 0.5:
		return "fresher"
	case years <= 3:
		return "1-3_years"
	case years <= 5:
		return "3-5_years"
	default:
		return "5+_years"
	}
}

func growthPotential(maxLPA, expected, years float64) GrowthPotential {
	immediate := (maxLPA - expected) / expected * 100

	var twoYear float64
	switch {
	case years < 3:
		twoYear = immediate * 2.5
	case years < 5:
		twoYear = immediate * 1.8
	default:
		twoYear = immediate * 1.3
	}

	return GrowthPotential{
		Immediate:     round1(math.Min(50, immediate)),
		OneYear:       round1(math.Min(80, immediate*1.5)),
		TwoYears:      round1(math.Min(120, twoYear)),
		PeakPotential: round1(math.Min(200, twoYear*1.5)),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
