// percent implements a simple and straightforward type for percentage values.
// Percentages may exceed 100, as justification widths are given relative to
// the natural width of a line.
package percent

import (
	"fmt"
	"strconv"
	"strings"
)

// Percent is a simple and straightforward type for percentage values
type Percent uint16

// Max is the largest percentage value we accept.
const Max Percent = 1000

// Natural is 100%.
const Natural Percent = 100

// FromString parses "120%" or "120". Values out of range are an error.
func FromString(s string) (Percent, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	n, err := strconv.Atoi(s)
	if err != nil {
		return Natural, err
	}
	if n < 0 || n > int(Max) {
		return Natural, fmt.Errorf("percentage out of range: %d", n)
	}
	return Percent(n), nil
}

func (p Percent) String() string {
	return strconv.Itoa(int(p)) + "%"
}
