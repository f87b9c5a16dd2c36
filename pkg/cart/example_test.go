package cart_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/ssargent/sharecart/pkg/cart"
)

// ExampleCodec_basic demonstrates decoding, changing and re-encoding a cart
func ExampleCodec_basic() {
	codec := cart.NewCodec()

	record, err := codec.Decode("[Main]\nMapX=73\nMapY=1023\nPlayerName=Fearless Concurrency\nSwitch2=True\n")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("MapX: %d\n", record.MapX)
	fmt.Printf("MapY: %d\n", record.MapY)
	fmt.Printf("Player: %s\n", record.PlayerName)
	fmt.Printf("Switch2: %t\n", record.Switch[2])

	record.Misc[0] = 54
	fmt.Print(codec.Encode(record))

	// Output:
	// MapX: 73
	// MapY: 1023
	// Player: Fearless Concurrency
	// Switch2: true
	// [Main]
	// MapX=73
	// MapY=1023
	// Misc0=54
	// Misc1=0
	// Misc2=0
	// Misc3=0
	// PlayerName=Fearless Concurrency
	// Switch0=FALSE
	// Switch1=FALSE
	// Switch2=TRUE
	// Switch3=FALSE
	// Switch4=FALSE
	// Switch5=FALSE
	// Switch6=FALSE
	// Switch7=FALSE
}

// ExampleDecode_recovery shows how bad values fall back to defaults
func ExampleDecode_recovery() {
	record, err := cart.Decode("[main]\nmapx=2000\nMisc1=lots\nMisc2=12\nswitch0=yes\nswitch1=TRUE\n")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(record.MapX, record.Misc, record.Switch[0], record.Switch[1])

	// Output:
	// 976 [0 0 12 0] false true
}

// ExampleDecode_syntaxError shows the only failure Decode reports
func ExampleDecode_syntaxError() {
	_, err := cart.Decode("[Main\nMapX=1\n")
	fmt.Println(errors.Is(err, cart.ErrSyntax))

	// Output:
	// true
}

// ExampleRecord_With demonstrates setting one field from text
func ExampleRecord_With() {
	record, ok := cart.Record{}.With("Switch7", "true")
	fmt.Println(ok, record.Switch)

	_, ok = record.With("Switch8", "true")
	fmt.Println(ok)

	// Output:
	// true [false false false false false false false true]
	// false
}
