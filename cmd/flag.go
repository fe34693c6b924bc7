package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Flag struct {
	Config string
	Cli    string
}

type StringFlag struct {
	f *Flag
}

type IntFlag struct {
	f *Flag
}

type BoolFlag struct {
	f *Flag
}

type DurationFlag struct {
	f *Flag
}

func (f *StringFlag) Bind(cmd *cobra.Command, value, usage string) {
	cmd.PersistentFlags().String(f.f.Cli, value, usage)
	if err := viper.BindPFlag(f.f.Config, cmd.PersistentFlags().Lookup(f.f.Cli)); err != nil {
		panic(err)
	}
}

func (f *Flag) String() *StringFlag {
	return &StringFlag{
		f: f,
	}
}

func (f *IntFlag) Bind(cmd *cobra.Command, value int, usage string) {
	cmd.PersistentFlags().Int(f.f.Cli, value, usage)
	if err := viper.BindPFlag(f.f.Config, cmd.PersistentFlags().Lookup(f.f.Cli)); err != nil {
		panic(err)
	}
}

func (f *Flag) Int() *IntFlag {
	return &IntFlag{
		f: f,
	}
}

func (f *BoolFlag) Bind(cmd *cobra.Command, value bool, usage string) {
	cmd.PersistentFlags().Bool(f.f.Cli, value, usage)
	if err := viper.BindPFlag(f.f.Config, cmd.PersistentFlags().Lookup(f.f.Cli)); err != nil {
		panic(err)
	}
}

func (f *Flag) Bool() *BoolFlag {
	return &BoolFlag{
		f: f,
	}
}

func (f *DurationFlag) Bind(cmd *cobra.Command, value time.Duration, usage string) {
	cmd.PersistentFlags().Duration(f.f.Cli, value, usage)
	if err := viper.BindPFlag(f.f.Config, cmd.PersistentFlags().Lookup(f.f.Cli)); err != nil {
		panic(err)
	}
}

func (f *Flag) Duration() *DurationFlag {
	return &DurationFlag{
		f: f,
	}
}

func NewFlag(config, cli string) *Flag {
	return &Flag{
		Config: config,
		Cli:    cli,
	}
}
