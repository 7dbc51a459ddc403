package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
)

const (
	maxDice  = 100
	maxSides = 1000

	// operands and every intermediate result stay within these bounds
	maxNumber = 1_000_000
	maxResult = 1_000_000_000
)

var errTooBig = fmt.Errorf("result too big, keep it within ±%d", maxResult)

func withinResult(v int) bool { return v >= -maxResult && v <= maxResult }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type term struct {
	value int
	desc  string
	op    string
}

// roller evaluates dice formulas like 2d6+1d4*2-3. intn returns a value in
// [0, n).
type roller struct {
	intn func(n int) int
}

// roll returns the total and a breakdown of every term.
func (r roller) roll(formula string) (int, string, error) {
	formula = strings.ReplaceAll(formula, " ", "")
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 || strings.Join(tokens, "") != formula {
		return 0, "", fmt.Errorf("can't parse `%s`, try something like `2d6+1d4*2-3`", formula)
	}

	var terms []term
	op := "+"
	expectOperand := true
	for _, tok := range tokens {
		if strings.ContainsAny(tok, "+-*/") {
			if expectOperand {
				return 0, "", errors.New("operator without left operand")
			}
			op = tok
			expectOperand = true
			continue
		}
		val, desc, err := r.evaluate(tok)
		if err != nil {
			return 0, "", fmt.Errorf("failed to evaluate `%s`: %w", tok, err)
		}
		terms = append(terms, term{value: val, desc: desc, op: op})
		expectOperand = false
	}
	if expectOperand {
		return 0, "", errors.New("formula ends with an operator")
	}

	// * and / bind tighter
	var merged []term
	for _, t := range terms {
		if t.op != "*" && t.op != "/" {
			merged = append(merged, t)
			continue
		}
		prev := merged[len(merged)-1]
		switch t.op {
		case "*":
			if t.value != 0 && abs(prev.value) > maxResult/abs(t.value) {
				return 0, "", errTooBig
			}
			prev.value *= t.value
		case "/":
			if t.value == 0 {
				return 0, "", errors.New("division by zero is forbidden, even in games")
			}
			prev.value /= t.value
		}
		prev.desc = fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc)
		merged[len(merged)-1] = prev
	}

	total := 0
	var b strings.Builder
	for i, t := range merged {
		if i > 0 {
			fmt.Fprintf(&b, " %s ", t.op)
		}
		b.WriteString(t.desc)
		if t.op == "-" {
			total -= t.value
		} else {
			total += t.value
		}
		if !withinResult(total) {
			return 0, "", errTooBig
		}
	}
	return total, b.String(), nil
}

func (r roller) evaluate(tok string) (int, string, error) {
	m := diceRegex.FindStringSubmatch(tok)
	if m == nil {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return 0, "", errors.New("not a number or dice")
		}
		if n > maxNumber {
			return 0, "", fmt.Errorf("numbers go up to %d", maxNumber)
		}
		return n, fmt.Sprintf("`%d`", n), nil
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return 0, "", errors.New("invalid dice count")
		}
		count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return 0, "", errors.New("invalid dice sides")
	}
	if count > maxDice || sides > maxSides {
		return 0, "", fmt.Errorf("too big, max %d dice with %d sides", maxDice, maxSides)
	}

	sum := 0
	rolls := make([]string, count)
	for i := range rolls {
		v := r.intn(sides) + 1
		sum += v
		rolls[i] = strconv.Itoa(v)
	}
	return sum, fmt.Sprintf("`%s` [%s]", tok, strings.Join(rolls, ", ")), nil
}
