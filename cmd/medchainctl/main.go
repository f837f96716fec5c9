// medchainctl is the operator tool for the record service: key generation,
// offline fingerprint verification, sample data and anchor reconciliation.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"medchain/internal/config"
	"medchain/internal/domain/models"
	"medchain/internal/domain/services"
	"medchain/internal/repository/postgres"
	"medchain/internal/service"
	"medchain/internal/service/anchor/sui"
	"medchain/internal/service/canonical"
	"medchain/internal/service/cipher"
)

const usage = `medchainctl manages a medchain deployment.

Usage:
  medchainctl <command> [flags]

Commands:
  keygen      print a new field-cipher keypair and a Sui signer seed
  hash        fingerprint a ledger document the way the anchor does
  seed        commit the sample record P001 through the configured workflow
  reconcile   retry degraded public anchors
  reset       drop the postgres tables of the configured prefix

Run "medchainctl <command> --help" for command flags.
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(out, usage)
		return nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case "keygen":
		return runKeygen(rest, out)
	case "hash":
		return runHash(rest, out)
	case "seed":
		return runSeed(rest, out)
	case "reconcile":
		return runReconcile(rest, out)
	case "reset":
		return runReset(rest, out)
	default:
		return fmt.Errorf("unknown command %q (run medchainctl --help)", command)
	}
}

func runKeygen(args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	kp, err := cipher.GenerateKeypair()
	if err != nil {
		return err
	}
	signer, seed, err := sui.GenerateSigner()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "CIPHER_IDENTITY=%s\n", kp.Identity)
	fmt.Fprintf(out, "CIPHER_RECIPIENTS=%s\n", kp.Recipient)
	fmt.Fprintf(out, "SUI_SIGNER_SEED=%s\n", seed)
	fmt.Fprintf(out, "# sui address: %s\n", signer.Address())
	return nil
}

func runHash(args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("hash", pflag.ContinueOnError)
	file := flagSet.StringP("file", "f", "", "ledger document to fingerprint (- for stdin)")
	encoding := flagSet.String("encoding", canonical.EncodingJSON, "canonical encoding: json or cbor")
	algorithm := flagSet.String("algorithm", canonical.AlgorithmSHA256, "digest algorithm: sha256 or blake3")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("--file is required")
	}

	var data []byte
	var err error
	if *file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(*file)
	}
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	digest, err := fingerprint(data, *encoding, *algorithm)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, digest)
	return nil
}

// fingerprint decodes a stored document and recomputes its public hash
func fingerprint(document []byte, encoding, algorithm string) (string, error) {
	var record models.Record
	if err := json.Unmarshal(document, &record); err != nil {
		return "", fmt.Errorf("decode document: %w", err)
	}

	canonicalizer, err := canonical.NewCanonicalizer(encoding)
	if err != nil {
		return "", err
	}
	digester, err := canonical.NewDigester(algorithm)
	if err != nil {
		return "", err
	}

	data, err := canonicalizer.Canonicalize(&record)
	if err != nil {
		return "", err
	}
	return digester.Digest(data), nil
}

// sampleRecord is the record the ledger is initialized with
func sampleRecord() *services.SubmitRecordRequest {
	return &services.SubmitRecordRequest{
		RecordID:    "P001",
		PatientID:   "P001",
		PatientName: "John Doe",
		Department:  "General",
		Symptoms:    "Fever",
		Diagnosis:   "Flu",
		Treatment:   "Rest",
		DoctorName:  "Dr. House",
	}
}

func runSeed(args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	encrypt := flagSet.Bool("encrypt", false, "encrypt the sample record's clinical fields")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	svcs, err := setup(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()

	req := sampleRecord()
	req.Encrypt = *encrypt
	result, err := svcs.Records.Submit(ctx, req)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return printJSON(out, result)
}

func runReconcile(args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("reconcile", pflag.ContinueOnError)
	limit := flagSet.IntP("limit", "n", config.DefaultReconcileBatch, "maximum number of pending anchors to retry")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	svcs, err := setup(ctx)
	if err != nil {
		return err
	}
	defer svcs.Close()

	report, err := svcs.Records.ReconcilePending(ctx, *limit)
	if err != nil {
		return err
	}
	return printJSON(out, report)
}

func runReset(args []string, out io.Writer) error {
	flagSet := pflag.NewFlagSet("reset", pflag.ContinueOnError)
	confirm := flagSet.Bool("yes", false, "confirm dropping every table of the configured prefix")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.Environment == "prod" {
		return errors.New("refusing to reset a production environment")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if !*confirm {
		return fmt.Errorf("this drops all %s* ledger tables; pass --yes to continue", cfg.TablePrefix)
	}

	if err := postgres.MigrateDown(cfg.DatabaseURL, cfg.TablePrefix, newLogger()); err != nil {
		return err
	}
	fmt.Fprintf(out, "tables dropped (prefix: %s)\n", cfg.TablePrefix)
	return nil
}

func setup(ctx context.Context) (*service.Services, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	return service.Setup(ctx, cfg, newLogger())
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
