package scoring

import (
	"regexp"
	"sort"
	"strings"
)

// TopicNames is the fixed topic vocabulary. Ordering is part of the
// contract: weak/strong topic queries report in this order.
var TopicNames = []string{
	"DBMS", "Python", "JavaScript", "Java", "C++",
	"Data Structures", "Algorithms", "Networking", "OS",
	"System Design", "OOPS", "React", "Node.js", "AWS",
	"DevOps", "Machine Learning", "SQL", "MongoDB",
	"Git", "Docker",
}

// topicKeywords triggers per topic. Short triggers (<4 chars) only match on
// word boundaries so "os" does not fire inside "cost".
var topicKeywords = map[string][]string{
	"Python":     {"python", "pip", "def ", "import ", "list", "dict", "tuple", "decorator", "generator", "pandas", "numpy"},
	"Java":       {"java", "jvm", "jdk", "public static", "system.out", "arraylist", "hashmap", "maven", "spring"},
	"JavaScript": {"javascript", "js", "node", "npm", "console.log", "const", "let", "var", "async", "await", "react", "angular"},
	"DBMS":       {"sql", "database", "dbms", "normalization", "acid", "transaction", "primary key", "foreign key", "mysql", "mongodb", "relation"},
	"OOPS":       {"class", "object", "inheritance", "polymorphism", "encapsulation", "abstraction", "interface", "constructor", "method overriding"},
	"Networking": {"http", "tcp", "ip", "dns", "protocol", "port", "socket", "osi model", "ftp", "ssh"},
	"OS":         {"operating system", "kernel", "deadlock", "scheduler", "paging", "virtual memory", "semaphore", "mutex", "process", "thread"},
	"AWS":        {"aws", "ec2", "s3", "lambda", "cloud", "iam", "vpc"},
	"Data Structures": {"array", "linked list", "stack", "queue", "tree", "graph", "hash table", "heap", "b-tree", "trie"},
	"Algorithms":      {"sorting", "searching", "recursion", "dynamic programming", "greedy", "complexity", "big o", "bfs", "dfs"},
}

const fallbackThreshold = 0.3

// TopicTagger maps free text to topic labels via keyword rules with a
// lexical fallback. Stateless and safe to share.
type TopicTagger struct {
	topicIndex map[string]int
	fallback   map[string][]string
}

func NewTopicTagger() *TopicTagger {
	idx := make(map[string]int, len(TopicNames))
	fallback := make(map[string][]string, len(TopicNames))
	for i, name := range TopicNames {
		idx[name] = i
		terms := []string{}
		for _, word := range strings.Fields(strings.ToLower(name)) {
			terms = append(terms, word)
		}
		terms = append(terms, topicKeywords[name]...)
		fallback[name] = terms
	}
	return &TopicTagger{topicIndex: idx, fallback: fallback}
}

// Extract returns a non-empty set of topic labels for the text, biased by
// the optional context string (typically the quiz title). Results follow
// the fixed vocabulary ordering.
func (t *TopicTagger) Extract(text, context string) []string {
	textLower := strings.ToLower(text)
	contextLower := strings.ToLower(context)
	found := make(map[string]struct{})

	for topic, keys := range topicKeywords {
		for _, key := range keys {
			if len(key) < 4 {
				if matchesWordBoundary(key, textLower) {
					found[topic] = struct{}{}
					break
				}
			} else if strings.Contains(textLower, key) {
				found[topic] = struct{}{}
				break
			}
		}
	}

	// Context bias: a quiz title naming a topic adds it outright.
	if context != "" {
		for topic := range topicKeywords {
			topicLower := strings.ToLower(topic)
			if strings.Contains(contextLower, topicLower) || strings.Contains(topicLower, contextLower) {
				found[topic] = struct{}{}
			}
		}
	}

	// DSA quizzes mention rows, columns, and keys without being about
	// databases; drop the incidental DBMS match unless the text is explicit.
	if strings.Contains(contextLower, "data structures") || strings.Contains(contextLower, "algorithms") {
		if _, ok := found["DBMS"]; ok {
			if !strings.Contains(textLower, "sql") && !strings.Contains(textLower, "database") {
				delete(found, "DBMS")
			}
		}
	}

	if len(found) > 0 {
		return t.ordered(found)
	}
	return t.fallbackTopics(textLower)
}

// fallbackTopics scores every vocabulary topic by the share of text tokens
// that fuzzy-match one of the topic's terms, keeping topics above the
// threshold or the top two otherwise. Guaranteed non-empty.
func (t *TopicTagger) fallbackTopics(textLower string) []string {
	tokens := wordPattern.FindAllString(textLower, -1)

	type scored struct {
		topic string
		score float64
	}
	results := make([]scored, 0, len(TopicNames))
	for _, topic := range TopicNames {
		matched := 0
		for _, tok := range tokens {
			if _, stop := stopWords[tok]; stop {
				continue
			}
			for _, term := range t.fallback[topic] {
				if sequenceRatio(tok, term) >= fuzzyMatchCutoff {
					matched++
					break
				}
			}
		}
		score := 0.0
		if len(tokens) > 0 {
			score = float64(matched) / float64(len(tokens))
		}
		results = append(results, scored{topic: topic, score: score})
	}

	var above []string
	for _, r := range results {
		if r.score > fallbackThreshold {
			above = append(above, r.topic)
		}
	}
	if len(above) > 0 {
		return above
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	return []string{results[0].topic, results[1].topic}
}

func (t *TopicTagger) ordered(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for topic := range set {
		out = append(out, topic)
	}
	sort.Slice(out, func(i, j int) bool {
		return t.topicIndex[out[i]] < t.topicIndex[out[j]]
	})
	return out
}

func matchesWordBoundary(key, text string) bool {
	pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(key) + `\b`)
	if err != nil {
		return strings.Contains(text, key)
	}
	return pattern.MatchString(text)
}
