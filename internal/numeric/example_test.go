package numeric_test

import (
	"fmt"

	"inventory/internal/numeric"
)

func ExampleParseBR() {
	total, err := numeric.ParseBR("R$ 1.234,56")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(total.StringFixed(2))
	// Output: 1234.56
}

func ExampleParseDotted() {
	quantity, _ := numeric.ParseDotted("2.5000")
	fmt.Println(quantity.String())
	// Output: 2.5
}
