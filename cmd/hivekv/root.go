package main

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hivekv/hivekv/client"
	"github.com/hivekv/hivekv/internal/errs"
)

// RootCmd is hivekv's base command. Each subcommand dials its own
// connection via connect() rather than sharing one across the process,
// mirroring the teacher's one-shot CLI invocations.
var RootCmd = &cobra.Command{
	Use:   "hivekv",
	Short: "Command-line client for the hivekv server",
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().String("addr", "localhost:4040", "server address")
	RootCmd.PersistentFlags().String("tls-ca", "", "CA certificate to verify the server with")
	RootCmd.PersistentFlags().Bool("tls-insecure", false, "skip server certificate verification")

	RootCmd.AddCommand(hgetCmd, hgetallCmd, hmgetCmd, hsetCmd, hmsetCmd,
		hdelCmd, hmdelCmd, hexistCmd, hmexistCmd,
		subscribeCmd, unsubscribeCmd, publishCmd)
}

func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("hivekv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// connect binds the current command's flags to viper and dials the server.
func connect(cmd *cobra.Command) (*client.Client, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	tlsCfg := &tls.Config{InsecureSkipVerify: viper.GetBool("tls-insecure")}
	if caPath := viper.GetString("tls-ca"); caPath != "" {
		pem, err := os.ReadFile(caPath)
		if err != nil {
			return nil, errs.Transport("hivekv: reading CA cert: %v", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errs.Transport("hivekv: invalid CA cert %s", caPath)
		}
		tlsCfg.RootCAs = pool
	}

	return client.Dial(viper.GetString("addr"), tlsCfg)
}
