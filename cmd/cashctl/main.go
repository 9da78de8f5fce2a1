package main

import "github.com/easyplus-cash-ledger/internal/cashctl"

func main() {
	cashctl.Execute()
}
