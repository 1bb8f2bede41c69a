// Package names owns the canonical matching key for player names. Every feed
// and every internal lookup funnels through Normalize so there is exactly one
// fold rule in the codebase. Keys are for matching only and are never shown to
// end users.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// explicitFolds covers characters that do not decompose to base+mark under
// NFD (ø, æ, ß) plus the accents the feeds are known to send. Applying the
// table before NFD keeps the output stable even if a feed sends pre-composed
// characters the NFD pass would otherwise split differently.
var explicitFolds = strings.NewReplacer(
	"ø", "o", "Ø", "o",
	"æ", "ae", "Æ", "ae",
	"ß", "ss",
	"å", "a", "Å", "a",
	"ä", "a", "Ä", "a",
	"ö", "o", "Ö", "o",
	"ü", "u", "Ü", "u",
	"ñ", "n", "Ñ", "n",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"á", "a", "à", "a", "â", "a",
	"í", "i", "ì", "i", "î", "i", "ï", "i",
	"ó", "o", "ò", "o", "ô", "o",
	"ú", "u", "ù", "u", "û", "u",
	"ý", "y",
	"ç", "c",
)

var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// nicknames maps a short form to its canonical given names. Lookups go both
// ways: AlternatesFor("nico") yields "nicolas" and AlternatesFor("nicolas")
// yields "nico". Seeded from the name aliases the score feeds actually use.
var nicknames = map[string][]string{
	"nico":  {"nicolas"},
	"matt":  {"matthew"},
	"matti": {"matthias"},
	"dan":   {"daniel"},
	"danny": {"daniel"},
	"tom":   {"thomas"},
	"tommy": {"thomas"},
	"will":  {"william"},
	"sam":   {"samuel"},
	"ben":   {"benjamin"},
	"cam":   {"cameron"},
	"alex":  {"alexander"},
	"seb":   {"sebastian"},
}

// reverseNicknames is built once from nicknames at init.
var reverseNicknames = func() map[string][]string {
	rev := make(map[string][]string, len(nicknames))
	for short, fulls := range nicknames {
		for _, full := range fulls {
			rev[full] = append(rev[full], short)
		}
	}
	return rev
}()

// Normalize canonicalizes a free-text player name into a matching key:
// lowercase, trimmed, periods and hyphens stripped, accents folded, internal
// whitespace collapsed. "Ludvig Åberg" and "ludvig aberg" normalize equal.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = flipCommaName(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "'", "")
	s = explicitFolds.Replace(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

// flipCommaName turns "schmid, matti" into "matti schmid". Some feeds send
// leaderboard names in last-first order.
func flipCommaName(s string) string {
	last, first, ok := strings.Cut(s, ",")
	if !ok {
		return s
	}
	return strings.TrimSpace(first) + " " + strings.TrimSpace(last)
}

// AlternatesFor returns the nickname alternates of a single normalized name
// token, in both directions (short form for a full name and vice versa).
func AlternatesFor(token string) []string {
	var alts []string
	alts = append(alts, nicknames[token]...)
	alts = append(alts, reverseNicknames[token]...)
	return alts
}

// AlternateKeys returns every matching key a name should be registered (or
// looked up) under, the plain normalized key first:
//   - nickname alternates of the first token ("Matti Schmid" → "matthias schmid")
//   - for 3+ word names, the first two tokens joined ("Seung Taek Lee" →
//     "seungtaek lee")
//   - for 2+ word names, the reversed "last first" key
func AlternateKeys(raw string) []string {
	key := Normalize(raw)
	if key == "" {
		return nil
	}
	keys := []string{key}
	seen := map[string]bool{key: true}
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	tokens := strings.Fields(key)
	if len(tokens) >= 2 {
		rest := strings.Join(tokens[1:], " ")
		for _, alt := range AlternatesFor(tokens[0]) {
			add(alt + " " + rest)
		}
	}
	if len(tokens) >= 3 {
		joined := tokens[0] + tokens[1]
		add(strings.Join(append([]string{joined}, tokens[2:]...), " "))
	}
	if len(tokens) >= 2 {
		last := tokens[len(tokens)-1]
		add(strings.Join(append([]string{last}, tokens[:len(tokens)-1]...), " "))
	}
	return keys
}
