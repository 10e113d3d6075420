package formula

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type numberClass int

const (
	classNone numberClass = iota
	classUnit
	classTeen
	classTens
	classHundred
	classScale
)

var numberWords = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	"hundred": 100, "thousand": 1_000, "million": 1_000_000, "billion": 1_000_000_000,
}

func classOf(word string) numberClass {
	v, ok := numberWords[word]
	switch {
	case !ok:
		return classNone
	case word == "hundred":
		return classHundred
	case v >= 1000:
		return classScale
	case v >= 20:
		return classTens
	case v >= 10:
		return classTeen
	}
	return classUnit
}

// follows reports whether next may continue a number phrase ending in prev.
func follows(prev, next numberClass) bool {
	switch next {
	case classUnit:
		return prev == classTens || prev == classHundred || prev == classScale
	case classTeen, classTens:
		return prev == classHundred || prev == classScale
	case classHundred:
		return prev == classUnit || prev == classTeen || prev == classTens
	case classScale:
		return prev != classNone && prev != classScale
	}
	return false
}

var letterRun = regexp.MustCompile(`[A-Za-z]+`)

type numberPhrase struct {
	text   string
	digits string
}

// convertNumerals replaces English number phrases ("three hundred and five",
// "twenty-one", "three point one four") with digits. Each phrase found is
// replaced as escaped literal text, so nothing in it is read as a pattern.
func convertNumerals(s string) string {
	phrases := findNumberPhrases(s)
	sort.SliceStable(phrases, func(i, j int) bool {
		return len(phrases[i].text) > len(phrases[j].text)
	})
	done := make(map[string]bool)
	for _, p := range phrases {
		key := strings.ToLower(p.text)
		if done[key] {
			continue
		}
		done[key] = true
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p.text) + `\b`)
		s = re.ReplaceAllLiteralString(s, p.digits)
	}
	return s
}

func findNumberPhrases(s string) []numberPhrase {
	locs := letterRun.FindAllStringIndex(s, -1)
	word := func(i int) string { return strings.ToLower(s[locs[i][0]:locs[i][1]]) }
	joined := func(i int) bool {
		gap := strings.TrimSpace(s[locs[i][1]:locs[i+1][0]])
		return gap == "" || gap == "-"
	}

	var phrases []numberPhrase
	for i := 0; i < len(locs); {
		first := classOf(word(i))
		if first == classNone {
			i++
			continue
		}
		words := []string{word(i)}
		prev := first
		j := i
		for j+1 < len(locs) && joined(j) {
			next := word(j + 1)
			if c := classOf(next); c != classNone && follows(prev, c) {
				words = append(words, next)
				prev = c
				j++
				continue
			}
			if next == "and" && (prev == classHundred || prev == classScale) && j+2 < len(locs) && joined(j+1) {
				if c := classOf(word(j + 2)); c == classUnit || c == classTeen || c == classTens {
					words = append(words, "and", word(j+2))
					prev = c
					j += 2
					continue
				}
			}
			if next == "point" && j+2 < len(locs) && joined(j+1) && classOf(word(j+2)) == classUnit {
				words = append(words, "point")
				j++
				for j+1 < len(locs) && joined(j) && classOf(word(j+1)) == classUnit {
					words = append(words, word(j+1))
					j++
				}
			}
			break
		}
		phrases = append(phrases, numberPhrase{
			text:   s[locs[i][0]:locs[j][1]],
			digits: numberValue(words),
		})
		i = j + 1
	}
	return phrases
}

func numberValue(words []string) string {
	var total, current int64
	var decimals strings.Builder
	inDecimals := false
	for _, w := range words {
		switch {
		case inDecimals:
			decimals.WriteString(strconv.FormatInt(numberWords[w], 10))
		case w == "point":
			inDecimals = true
		case w == "and":
		case w == "hundred":
			if current == 0 {
				current = 1
			}
			current *= 100
		case classOf(w) == classScale:
			if current == 0 {
				current = 1
			}
			total += current * numberWords[w]
			current = 0
		default:
			current += numberWords[w]
		}
	}
	out := strconv.FormatInt(total+current, 10)
	if decimals.Len() > 0 {
		out += "." + decimals.String()
	}
	return out
}
