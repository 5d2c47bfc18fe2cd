//go:build ptdebug

package pt

const checkReentry = true
