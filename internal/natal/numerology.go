package natal

// masterNumbers stop the life-path reduction.
var masterNumbers = map[int]bool{11: true, 22: true, 33: true}

// LifePathOf computes the Pythagorean life-path number of d: the digits of
// YYYY-MM-DD are summed, then the sum is reduced digit by digit until it is a
// single digit or a master number (11, 22, 33).
func LifePathOf(d CivilDate) int {
	sum := 0
	for _, r := range d.String() {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	for sum > 9 && !masterNumbers[sum] {
		sum = digitSum(sum)
	}
	return sum
}

func digitSum(n int) int {
	if n < 0 {
		n = -n
	}
	s := 0
	for n > 0 {
		s += n % 10
		n /= 10
	}
	return s
}
