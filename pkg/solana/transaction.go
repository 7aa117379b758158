package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
)

// SubmitOptions controls one submission through the pipeline.
type SubmitOptions struct {
	SkipPreflight bool
	MaxRetries    int
	UsePrivateRPC bool
}

// SubmissionError is the terminal error raised after the retry budget is
// exhausted. It carries the last underlying failure.
type SubmissionError struct {
	Attempts int
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction submission failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// txSender abstracts the network layer so the retry loop can be exercised
// without an RPC node.
type txSender interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	Send(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error)
	Confirm(ctx context.Context, sig solana.Signature) error
}

type rpcSender struct {
	client         *rpc.Client
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

func newRPCSender(url string) *rpcSender {
	return &rpcSender{
		client:         rpc.New(url),
		pollInterval:   2 * time.Second,
		confirmTimeout: 60 * time.Second,
	}
}

func (s *rpcSender) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := s.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, err
	}
	return out.Value.Blockhash, nil
}

func (s *rpcSender) Send(ctx context.Context, tx *solana.Transaction, skipPreflight bool) (solana.Signature, error) {
	return s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       skipPreflight,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
}

func (s *rpcSender) Confirm(ctx context.Context, sig solana.Signature) error {
	deadline := time.Now().Add(s.confirmTimeout)

	for time.Now().Before(deadline) {
		status, err := s.client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return err
		}

		if len(status.Value) > 0 && status.Value[0] != nil {
			st := status.Value[0]
			if st.Err != nil {
				errJSON, _ := json.Marshal(st.Err)
				return fmt.Errorf("transaction failed: %s", string(errJSON))
			}
			if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}

	return fmt.Errorf("timed out waiting for confirmation of %s", sig)
}

// Submitter signs, submits and confirms transactions with bounded retries.
// A private endpoint is used only when explicitly requested and configured.
type Submitter struct {
	public     txSender
	private    txSender
	maxRetries int
	retryDelay time.Duration
}

// NewSubmitter creates a submission pipeline against the given endpoints.
// privateRPCURL may be empty.
func NewSubmitter(rpcURL, privateRPCURL string, maxRetries int, retryDelay time.Duration) *Submitter {
	s := &Submitter{
		public:     newRPCSender(rpcURL),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
	if privateRPCURL != "" {
		s.private = newRPCSender(privateRPCURL)
	}
	return s
}

// SendAndConfirm attaches a fresh blockhash and fee payer, signs with the
// provided key, submits and waits for confirmation. Submission and
// confirmation failures are retried with linearly increasing backoff; the
// blockhash is not refreshed between attempts (the retry window is well
// inside its validity for the default settings). Either a confirmed
// signature is returned, or a SubmissionError carrying the last failure.
func (s *Submitter) SendAndConfirm(ctx context.Context, instructions []solana.Instruction, signer solana.PrivateKey, opts SubmitOptions) (solana.Signature, error) {
	sender := s.public
	if opts.UsePrivateRPC && s.private != nil {
		sender = s.private
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = s.maxRetries
	}

	payer := signer.PublicKey()

	blockhash, err := sender.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to fetch latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &signer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return solana.Signature{}, &SubmissionError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * s.retryDelay):
			}
		}

		sig, err := sender.Send(ctx, tx, opts.SkipPreflight)
		if err != nil {
			lastErr = err
			log.Warnf("Transaction attempt %d/%d failed: %v", attempt+1, maxRetries, err)
			continue
		}

		if err := sender.Confirm(ctx, sig); err != nil {
			lastErr = err
			log.Warnf("Transaction %s confirmation attempt %d/%d failed: %v", sig, attempt+1, maxRetries, err)
			continue
		}

		log.Infof("Transaction confirmed: %s", sig)
		return sig, nil
	}

	return solana.Signature{}, &SubmissionError{Attempts: maxRetries, Err: lastErr}
}
