package main

import "github.com/varalys/gitaudit/cmd/gitaudit"

func main() { gitaudit.Execute() }
