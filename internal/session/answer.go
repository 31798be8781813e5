package session

// ResolveAnswer maps a rightAnswer bitmask to the answer index it selects.
// The mask is one character per answer slot with exactly one '1'; an all-zero
// or multi-one mask selects nothing and returns -1.
func ResolveAnswer(rightAnswer string, maxAnswers int) int {
	if maxAnswers <= 0 || len(rightAnswer) != maxAnswers {
		return -1
	}
	idx := -1
	for i := 0; i < len(rightAnswer); i++ {
		switch rightAnswer[i] {
		case '0':
		case '1':
			if idx >= 0 {
				return -1
			}
			idx = i
		default:
			return -1
		}
	}
	return idx
}

// Medal is a decoded ShowMedal ranking.
type Medal struct {
	Code  int    `json:"code"`
	Place string `json:"place"`
}

// Ranking codes as observed from live traffic. Unverified protocol trivia:
// one revision of the service appeared to swap 1st and 3rd.
const (
	medalBronze = 0
	medalSilver = 1
	medalGold   = 2
)

// DecodeMedal turns a ShowMedal ranking code into a Medal.
func DecodeMedal(code int) Medal {
	switch code {
	case medalBronze:
		return Medal{Code: code, Place: "3rd"}
	case medalSilver:
		return Medal{Code: code, Place: "2nd"}
	case medalGold:
		return Medal{Code: code, Place: "1st"}
	default:
		return Medal{Code: code, Place: "unknown"}
	}
}
