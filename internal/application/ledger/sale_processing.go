package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hms/backend/internal/domain/ledger"
	"github.com/hms/backend/internal/domain/revenue"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleLine is one requested line of a sale being finalized
type SaleLine struct {
	StockItemID uuid.UUID
	Quantity    int
}

// SaleProcessor finalizes pharmacy sales. Unlike the event-driven
// binding of the other sources, a sale commits stock deduction, item
// rows, the ledger credit and the wallet recompute in one database
// transaction: any failure rolls the whole unit back and surfaces to
// the caller.
type SaleProcessor struct {
	store       ledger.Store
	sales       revenue.SaleRepository
	stock       revenue.StockRepository
	recognizers *revenue.RecognizerSet
	clock       shared.Clock
	logger      *zap.Logger
	walletName  string
}

// NewSaleProcessor creates a sale processor
func NewSaleProcessor(
	store ledger.Store,
	sales revenue.SaleRepository,
	stock revenue.StockRepository,
	recognizers *revenue.RecognizerSet,
	clock shared.Clock,
	logger *zap.Logger,
	walletName string,
) *SaleProcessor {
	if walletName == "" {
		walletName = ledger.DefaultWalletName
	}
	return &SaleProcessor{
		store:       store,
		sales:       sales,
		stock:       stock,
		recognizers: recognizers,
		clock:       clock,
		logger:      logger,
		walletName:  walletName,
	}
}

// ProcessSale finalizes a pending sale: deducts stock for every line,
// writes the sale items, marks the sale paid and credits the ledger
func (p *SaleProcessor) ProcessSale(ctx context.Context, saleID uuid.UUID, lines []SaleLine, actorID *uuid.UUID) (*revenue.Sale, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "A sale needs at least one line")
	}

	var sale *revenue.Sale
	err := p.store.InTransaction(ctx, func(tx ledger.Tx) error {
		wallet, err := tx.LockWallet(ctx, p.walletName)
		if err != nil {
			return err
		}

		sales := p.sales.WithTx(tx.Provider())
		stock := p.stock.WithTx(tx.Provider())

		sale, err = sales.FindByID(ctx, saleID)
		if err != nil {
			return err
		}

		now := p.clock.Now()
		total := decimal.Zero
		items := make([]revenue.SaleItem, 0, len(lines))
		for _, line := range lines {
			item, err := p.dispense(ctx, stock, sale.ID, line)
			if err != nil {
				return err
			}
			items = append(items, *item)
			total = total.Add(item.LineTotal)
		}

		sale.Items = items
		sale.GrandTotal = total
		if err := sale.Finalize(now); err != nil {
			return err
		}
		if err := sales.Save(ctx, sale); err != nil {
			return err
		}

		recognition, err := p.recognizers.Recognize(sale)
		if err != nil {
			return err
		}
		if recognition != nil {
			credit, err := ledger.NewCredit(
				wallet.ID,
				recognition.Amount,
				recognition.Description,
				sale.Reference(),
				recognition.OccurredAt,
				actorID,
			)
			if err != nil {
				return err
			}
			if err := tx.Transactions().Append(ctx, credit); err != nil {
				return err
			}
		}

		walletTotal, err := tx.Transactions().SumByWallet(ctx, wallet.ID)
		if err != nil {
			return err
		}
		wallet.Recompute(walletTotal)
		return tx.SaveWallet(ctx, wallet)
	})
	if err != nil {
		p.logger.Warn("sale processing rolled back",
			zap.String("sale_id", saleID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return sale, nil
}

func (p *SaleProcessor) dispense(ctx context.Context, stock revenue.StockRepository, saleID uuid.UUID, line SaleLine) (*revenue.SaleItem, error) {
	item, err := stock.FindForUpdate(ctx, line.StockItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock item %s: %w", line.StockItemID, err)
	}
	if err := item.Deduct(line.Quantity); err != nil {
		return nil, err
	}
	if err := stock.Save(ctx, item); err != nil {
		return nil, err
	}
	return revenue.NewSaleItem(saleID, item, line.Quantity)
}
