package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"snipercontrol/internal/models"
	scsolana "snipercontrol/pkg/solana"
)

// WalletService manages user wallets and their encrypted signing keys.
// It implements SignerStore for the engine.
type WalletService struct {
	db         *gorm.DB
	keyManager *scsolana.KeyManager
}

func NewWalletService(db *gorm.DB, keyManager *scsolana.KeyManager) *WalletService {
	return &WalletService{db: db, keyManager: keyManager}
}

// CreateWallet generates a fresh keypair and stores it encrypted.
func (s *WalletService) CreateWallet(userID uint, name string) (*models.Wallet, error) {
	account, err := s.keyManager.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}

	encrypted, err := s.keyManager.EncryptPrivateKey(account.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	var existing int64
	s.db.Model(&models.Wallet{}).Where("user_id = ?", userID).Count(&existing)

	wallet := models.Wallet{
		UserID:              userID,
		PublicKey:           account.PublicKey.ToBase58(),
		EncryptedPrivateKey: encrypted,
		WalletName:          name,
		IsPrimary:           existing == 0,
	}
	if err := s.db.Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"public_key": wallet.PublicKey,
	}).Info("Wallet created")
	return &wallet, nil
}

// ImportWallet stores an existing base58 private key, encrypted.
func (s *WalletService) ImportWallet(userID uint, name, privateKeyBase58 string) (*models.Wallet, error) {
	account, err := s.keyManager.AccountFromBase58(privateKeyBase58)
	if err != nil {
		return nil, &ValidationError{Field: "private_key", Message: "not a valid base58 private key"}
	}

	encrypted, err := s.keyManager.EncryptPrivateKey(account.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}

	wallet := models.Wallet{
		UserID:              userID,
		PublicKey:           account.PublicKey.ToBase58(),
		EncryptedPrivateKey: encrypted,
		WalletName:          name,
	}
	if err := s.db.Create(&wallet).Error; err != nil {
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"public_key": wallet.PublicKey,
	}).Info("Wallet imported")
	return &wallet, nil
}

// GetSigner resolves a wallet's signing key, enforcing ownership.
func (s *WalletService) GetSigner(walletID, userID uint) (solana.PrivateKey, error) {
	var wallet models.Wallet
	err := s.db.Where("id = ? AND user_id = ?", walletID, userID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	signer, err := s.keyManager.SignerFromEncrypted(wallet.EncryptedPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt wallet key: %w", err)
	}

	// The decrypted key must match the address on the row; a mismatch
	// means the wallet record is corrupt.
	address, err := s.keyManager.GetSolanaAddressFromPrivateKey(signer)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wallet address: %w", err)
	}
	if address != wallet.PublicKey {
		return nil, fmt.Errorf("wallet %d key does not match its address", walletID)
	}

	now := time.Now()
	if err := s.db.Model(&wallet).Update("last_used_at", now).Error; err != nil {
		log.WithFields(log.Fields{
			"wallet_id": walletID,
			"error":     err.Error(),
		}).Warn("Failed to record wallet usage")
	}

	return signer, nil
}

// GetWallets lists a user's wallets. Encrypted keys never leave the
// service (the field is json-hidden on the model as well).
func (s *WalletService) GetWallets(userID uint) ([]models.Wallet, error) {
	var wallets []models.Wallet
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	return wallets, nil
}

// RecordBalance persists the latest observed SOL balance for a wallet.
func (s *WalletService) RecordBalance(walletID, userID uint, balanceSol float64) error {
	res := s.db.Model(&models.Wallet{}).
		Where("id = ? AND user_id = ?", walletID, userID).
		Update("balance_sol", balanceSol)
	if res.Error != nil {
		return fmt.Errorf("failed to record balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
