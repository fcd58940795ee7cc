package main

import (
	"errors"

	"github.com/ezrec/g233spi/translate"
)

var f = translate.From

var (
	errBus     = errors.New(f("unknown bus backend"))
	errCommand = errors.New(f("unknown command"))
	errUsage   = errors.New(f("wrong number of arguments"))
)
