package tokenswap

// AccountStorageOverhead is the number of bytes charged on top of the data
// of every account.
const AccountStorageOverhead = 128

// Rent defines the storage deposit an account must hold to remain on the
// ledger.
type Rent struct {
	LamportsPerByteYear uint64 `json:"lamports_per_byte_year"`
	ExemptionThreshold  uint64 `json:"exemption_threshold"`
}

// DefaultRent is used when no rent is configured in genesis.
var DefaultRent = Rent{
	LamportsPerByteYear: 3480,
	ExemptionThreshold:  2,
}

// MinimumBalance returns the lamports an account holding dataLen bytes
// must keep.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	return (AccountStorageOverhead + uint64(dataLen)) * r.LamportsPerByteYear * r.ExemptionThreshold
}

// IsExempt returns true if the balance covers the storage deposit.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
