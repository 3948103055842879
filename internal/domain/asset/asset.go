package asset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nft-minting-service/internal/domain/shared"
)

// Asset is the minted artifact. Created once, inside the saga transaction,
// only after generation succeeds. The raw generated image bytes are stored
// alongside the metadata so the artifact survives independently of the
// provider.
type Asset struct {
	ID            uuid.UUID          `json:"id"`
	TokenID       string             `json:"token_id"`
	Chain         string             `json:"chain"`
	OwnerUserID   uuid.UUID          `json:"owner_user_id"`
	MintRequestID uuid.UUID          `json:"mint_request_id"`
	MetadataURI   string             `json:"metadata_uri"`
	ImageURI      string             `json:"image_uri"`
	Attributes    []shared.Attribute `json:"attributes,omitempty"`
	Status        shared.AssetStatus `json:"status"`
	TxHash        string             `json:"tx_hash"`
	ImageData     []byte             `json:"-"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SynthesizeTokenID derives a globally unique token identifier for a mint
// attempt. No on-chain settlement happens here; the identifier is a local
// placeholder shaped like a chain token reference.
func SynthesizeTokenID(mintID uuid.UUID, chain string) string {
	sum := sha256.Sum256([]byte(chain + ":" + mintID.String()))
	return fmt.Sprintf("%s-%s", chain, hex.EncodeToString(sum[:16]))
}

// SynthesizeTxHash derives the synthetic settlement identifier recorded with
// the asset and its receipt
func SynthesizeTxHash(tokenID string, mintedAt time.Time) string {
	sum := sha256.Sum256([]byte(tokenID + mintedAt.UTC().Format(time.RFC3339Nano)))
	return "0x" + hex.EncodeToString(sum[:])
}
