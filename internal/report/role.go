package report

// roleTopics maps each role to the topics that signal fitness for it.
var roleTopics = map[string][]string{
	"Backend Developer":         {"Node.js", "DBMS", "SQL", "System Design", "OS"},
	"Frontend Developer":        {"JavaScript", "React", "OOPS"},
	"Full Stack Developer":      {"JavaScript", "React", "Node.js", "DBMS", "SQL"},
	"DevOps Engineer":           {"DevOps", "Docker", "AWS", "Git", "Networking"},
	"Data Analyst":              {"SQL", "Python", "Machine Learning"},
	"System Administrator":      {"OS", "Networking", "Git"},
	"QA Engineer":               {"Python", "Algorithms", "Git"},
	"Machine Learning Engineer": {"Machine Learning", "Python", "Algorithms", "Data Structures"},
}

// roleOrder keeps recommendation ties stable.
var roleOrder = []string{
	"Backend Developer",
	"Frontend Developer",
	"Full Stack Developer",
	"DevOps Engineer",
	"Data Analyst",
	"System Administrator",
	"QA Engineer",
	"Machine Learning Engineer",
}

// RoleRecommendation names the best-fit role and its fit score in [0,1].
type RoleRecommendation struct {
	Role     string  `json:"role"`
	FitScore float64 `json:"fit_score"`
}

// RecommendRole picks the role whose topic cluster has the highest average
// mastery. Topics missing from the map count at the unseen default (0.1).
func RecommendRole(topicMastery map[string]float64) RoleRecommendation {
	best := RoleRecommendation{Role: roleOrder[0]}
	for _, role := range roleOrder {
		topics := roleTopics[role]
		var sum float64
		for _, topic := range topics {
			if m, ok := topicMastery[topic]; ok {
				sum += m
			} else {
				sum += 0.1
			}
		}
		fit := sum / float64(len(topics))
		if fit > best.FitScore {
			best = RoleRecommendation{Role: role, FitScore: fit}
		}
	}
	best.FitScore = round3(best.FitScore)
	return best
}

func round3(v float64) float64 {
	const scale = 1000
	return float64(int(v*scale+0.5)) / scale
}
