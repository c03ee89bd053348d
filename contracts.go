package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pawnbook/models"
	"pawnbook/pkg/finance"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// customerInput is the customer block accepted by contract creation.
type customerInput struct {
	Name    string `json:"name"`
	IDCard  string `json:"idCard"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	LineID  string `json:"lineId"`
}

// loadContract fetches a contract by the :id route param, answering 404
// itself when the row does not exist.
func loadContract(c *gin.Context) (*models.Contract, bool) {
	var ct models.Contract
	if err := db.First(&ct, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "contract not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		}
		return nil, false
	}
	return &ct, true
}

// upsertCustomerByIDCard creates or updates a customer keyed by idCard.
// A duplicate idCard is an update path, not an error.
func upsertCustomerByIDCard(in customerInput) (*models.Customer, error) {
	var cust models.Customer
	err := db.Where("id_card = ?", in.IDCard).First(&cust).Error
	if err == nil {
		updates := map[string]interface{}{}
		if in.Name != "" {
			updates["name"] = in.Name
		}
		if in.Phone != "" {
			updates["phone"] = in.Phone
		}
		if in.Address != "" {
			updates["address"] = in.Address
		}
		if in.LineID != "" {
			updates["line_id"] = in.LineID
		}
		if len(updates) > 0 {
			if err := db.Model(&cust).Updates(updates).Error; err != nil {
				return nil, err
			}
		}
		return &cust, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cust = models.Customer{Name: in.Name, IDCard: in.IDCard, Phone: in.Phone, Address: in.Address, LineID: in.LineID}
	if err := db.Create(&cust).Error; err != nil {
		// lost a race to a concurrent create with the same idCard
		if isUniqueConstraintError(err) {
			if err2 := db.Where("id_card = ?", in.IDCard).First(&cust).Error; err2 == nil {
				return &cust, nil
			}
		}
		return nil, err
	}
	return &cust, nil
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

// createContractHandler opens a new deposit contract. The fee breakdown is
// taken from the caller as-is (normalized, total recomputed from parts);
// the console computes it with the same schedule. The contract row, its
// principal-payout ledger entry and the opening action log commit in one
// transaction.
func createContractHandler(c *gin.Context) {
	var req struct {
		Customer        customerInput      `json:"customer"`
		Principal       *float64           `json:"principal"`
		SecurityDeposit *float64           `json:"securityDeposit"`
		FeeBreakdown    *finance.Breakdown `json:"feeBreakdown"`
		FeeConfig       *finance.Breakdown `json:"feeConfig"`
		TermDays        int                `json:"termDays"`
		StartDate       string             `json:"startDate"` // optional ISO8601
		ItemName        string             `json:"itemName"`
		ItemModel       string             `json:"itemModel"`
		Serial          string             `json:"serial"`
		Condition       string             `json:"condition"`
		Accessories     string             `json:"accessories"`
		StorageSlot     string             `json:"storageSlot"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Customer.IDCard) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "customer idCard is required"})
		return
	}
	principal, ok := finance.ResolvePrincipal(req.Principal, req.SecurityDeposit)
	if !ok || principal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "principal must be a non-negative number"})
		return
	}
	if req.TermDays <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "termDays must be positive"})
		return
	}
	if strings.TrimSpace(req.ItemName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "itemName is required"})
		return
	}
	fee := finance.ResolveFee(req.FeeBreakdown, req.FeeConfig, func() finance.Breakdown {
		return finance.CalculateFee(principal, req.TermDays)
	})

	cust, err := upsertCustomerByIDCard(req.Customer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "customer upsert failed", "error": err.Error()})
		return
	}

	start := time.Now().UTC()
	if req.StartDate != "" {
		if t, perr := time.Parse(time.RFC3339, req.StartDate); perr == nil {
			start = t.UTC()
		}
	}

	ct := models.Contract{
		Principal: principal,
		Fee: models.FeeBreakdown{
			DocFee: fee.DocFee, StorageFee: fee.StorageFee, CareFee: fee.CareFee, Total: fee.Total,
		},
		TermDays:    req.TermDays,
		StartDate:   start,
		DueDate:     start.AddDate(0, 0, req.TermDays),
		Status:      models.ContractActive,
		CustomerID:  cust.ID,
		ItemName:    req.ItemName,
		ItemModel:   req.ItemModel,
		Serial:      req.Serial,
		Condition:   req.Condition,
		Accessories: req.Accessories,
		StorageSlot: req.StorageSlot,
	}
	netReceive := principal - fee.Total
	if netReceive < 0 {
		netReceive = 0
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		code, cerr := nextCode(tx, models.CodeKindDeposit)
		if cerr != nil {
			return cerr
		}
		ct.Code = code
		if err := tx.Create(&ct).Error; err != nil {
			return err
		}
		cid := ct.ID
		entry := models.CashbookEntry{
			Type:        models.EntryOut,
			Category:    models.CatDepositPrincipalOut,
			Amount:      netReceive,
			Description: fmt.Sprintf("จ่ายเงินต้นรับฝากสัญญา %s", ct.Code),
			ContractID:  &cid,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		logRow := models.ContractActionLog{
			ContractID: ct.ID,
			Action:     models.ActionNewContract,
			Amount:     principal,
			Note:       fmt.Sprintf("รับฝาก %s", ct.ItemName),
		}
		return tx.Create(&logRow).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "contract create failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ct)
}

// renewContractHandler closes a contract as RENEWED and opens a successor
// starting exactly at the old due date, so a late renewal does not shift
// the schedule. Term, principal and fee default to the prior values.
func renewContractHandler(c *gin.Context) {
	old, ok := loadContract(c)
	if !ok {
		return
	}
	if old.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("contract is %s and cannot be renewed", old.Status)})
		return
	}
	var req struct {
		Principal       *float64           `json:"principal"`
		SecurityDeposit *float64           `json:"securityDeposit"`
		TermDays        *int               `json:"termDays"`
		FeeBreakdown    *finance.Breakdown `json:"feeBreakdown"`
		FeeConfig       *finance.Breakdown `json:"feeConfig"`
	}
	// An empty body is allowed: everything defaults to the prior contract.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
			return
		}
	}
	principal, has := finance.ResolvePrincipal(req.Principal, req.SecurityDeposit)
	if !has {
		principal = old.Principal
	}
	if principal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "principal must be a non-negative number"})
		return
	}
	termDays := old.TermDays
	if req.TermDays != nil {
		if *req.TermDays <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "termDays must be positive"})
			return
		}
		termDays = *req.TermDays
	}
	fee := finance.ResolveFee(req.FeeBreakdown, req.FeeConfig, func() finance.Breakdown {
		if termDays == old.TermDays && principal == old.Principal {
			return finance.Breakdown{
				DocFee: old.Fee.DocFee, StorageFee: old.Fee.StorageFee,
				CareFee: old.Fee.CareFee, Total: old.Fee.Total,
			}
		}
		return finance.CalculateFee(principal, termDays)
	})

	start := old.DueDate
	prevID := old.ID
	next := models.Contract{
		Principal: principal,
		Fee: models.FeeBreakdown{
			DocFee: fee.DocFee, StorageFee: fee.StorageFee, CareFee: fee.CareFee, Total: fee.Total,
		},
		TermDays:           termDays,
		StartDate:          start,
		DueDate:            start.AddDate(0, 0, termDays),
		Status:             models.ContractActive,
		CustomerID:         old.CustomerID,
		PreviousContractID: &prevID,
		ItemName:           old.ItemName,
		ItemModel:          old.ItemModel,
		Serial:             old.Serial,
		Condition:          old.Condition,
		Accessories:        old.Accessories,
		StorageSlot:        old.StorageSlot,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		code, cerr := nextCode(tx, models.CodeKindDeposit)
		if cerr != nil {
			return cerr
		}
		next.Code = code
		if err := tx.Create(&next).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Contract{}).Where("id = ?", old.ID).
			Update("status", models.ContractRenewed).Error; err != nil {
			return err
		}
		nid := next.ID
		// The whole renewal fee is booked as profit; no cost basis applies.
		entry := models.CashbookEntry{
			Type:        models.EntryIn,
			Category:    models.CatRenewFee,
			Amount:      fee.Total,
			Profit:      fee.Total,
			Description: fmt.Sprintf("ค่าธรรมเนียมต่อสัญญา %s (เดิม %s)", next.Code, old.Code),
			ContractID:  &nid,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		logRow := models.ContractActionLog{
			ContractID: next.ID,
			Action:     models.ActionRenewContract,
			Amount:     fee.Total,
			Note:       fmt.Sprintf("ต่อสัญญาจาก %s", old.Code),
		}
		return tx.Create(&logRow).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "renew failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, next)
}

// redeemContractHandler closes a contract with the customer paying back the
// principal (fee was already deducted when cash went out at creation or
// renewal). The stored fee total is recognized as profit for reporting.
func redeemContractHandler(c *gin.Context) {
	ct, ok := loadContract(c)
	if !ok {
		return
	}
	if ct.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("contract is %s and cannot be redeemed", ct.Status)})
		return
	}
	var req struct {
		PaidTotal *float64 `json:"paidTotal"`
	}
	// An empty body means no override; a malformed one is still a 400.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
			return
		}
	}
	paid := ct.Principal
	if req.PaidTotal != nil {
		if *req.PaidTotal < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "paidTotal must be a non-negative number"})
			return
		}
		paid = *req.PaidTotal
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Contract{}).Where("id = ?", ct.ID).
			Update("status", models.ContractRedeemed).Error; err != nil {
			return err
		}
		cid := ct.ID
		entry := models.CashbookEntry{
			Type:        models.EntryIn,
			Category:    models.CatRedeem,
			Amount:      paid,
			Profit:      ct.Fee.Total,
			Description: fmt.Sprintf("ไถ่ถอนสัญญา %s", ct.Code),
			ContractID:  &cid,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		logRow := models.ContractActionLog{
			ContractID: ct.ID,
			Action:     models.ActionRedeem,
			Amount:     paid,
		}
		return tx.Create(&logRow).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "redeem failed", "error": err.Error()})
		return
	}
	ct.Status = models.ContractRedeemed
	c.JSON(http.StatusOK, ct)
}

// cutPrincipalHandler reduces the outstanding principal before redemption,
// recognizing the matching share of the term fee as profit immediately.
func cutPrincipalHandler(c *gin.Context) {
	ct, ok := loadContract(c)
	if !ok {
		return
	}
	if ct.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("contract is %s and cannot be cut", ct.Status)})
		return
	}
	var req struct {
		NewPrincipal *float64 `json:"newPrincipal"`
		CutAmount    *float64 `json:"cutAmount"`
		Note         string   `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}
	cutValue, target, err := finance.ResolveCut(ct.Principal, req.NewPrincipal, req.CutAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	profitCut := finance.ProportionalProfit(ct.Fee.Total, cutValue, ct.Principal)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Contract{}).Where("id = ?", ct.ID).
			Update("principal", target).Error; err != nil {
			return err
		}
		logRow := models.ContractActionLog{
			ContractID: ct.ID,
			Action:     models.ActionCutPrincipal,
			Amount:     cutValue,
			Note:       req.Note,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}
		cid := ct.ID
		entry := models.CashbookEntry{
			Type:        models.EntryIn,
			Category:    models.CatCutPrincipal,
			Amount:      cutValue,
			Profit:      profitCut,
			Description: fmt.Sprintf("ลดเงินต้นสัญญา %s", ct.Code),
			ContractID:  &cid,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "cut-principal failed", "error": err.Error()})
		return
	}
	ct.Principal = target
	c.JSON(http.StatusOK, gin.H{"contract": ct, "cutValue": cutValue, "profit": profitCut})
}

// forfeitContractHandler closes an unredeemed contract and converts the
// pledged asset into sellable stock. Not a cash event: no ledger entry.
// The sourceContractId lookup makes the stock conversion idempotent.
func forfeitContractHandler(c *gin.Context) {
	ct, ok := loadContract(c)
	if !ok {
		return
	}
	if ct.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("contract is %s and cannot be forfeited", ct.Status)})
		return
	}
	var item models.InventoryItem
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Contract{}).Where("id = ?", ct.ID).
			Update("status", models.ContractForfeited).Error; err != nil {
			return err
		}
		logRow := models.ContractActionLog{
			ContractID: ct.ID,
			Action:     models.ActionForfeit,
			Amount:     ct.Principal,
			Note:       fmt.Sprintf("หลุดจำนำ %s", ct.ItemName),
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}
		// Idempotency guard: one stock item per forfeited contract.
		err := tx.Where("source_contract_id = ?", ct.ID).First(&item).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		code, cerr := nextCode(tx, models.CodeKindInventory)
		if cerr != nil {
			return cerr
		}
		target := ct.Principal + ct.Fee.Total
		if target < ct.Principal {
			target = ct.Principal
		}
		srcID := ct.ID
		item = models.InventoryItem{
			Code:              code,
			Name:              ct.ItemName,
			Serial:            ct.Serial,
			Source:            models.SourceForfeit,
			Cost:              ct.Principal,
			TargetPrice:       target,
			Quantity:          1,
			QuantityAvailable: 1,
			Status:            models.ItemInStock,
			SourceContractID:  &srcID,
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "forfeit failed", "error": err.Error()})
		return
	}
	ct.Status = models.ContractForfeited
	c.JSON(http.StatusOK, gin.H{"contract": ct, "inventoryItem": item})
}

// notifyCustomerHandler pushes a LINE message to the contract's customer
// and records the attempt in the action log. Delivery failure is a
// side-effect failure: logged, and reported through the delivered flag.
func notifyCustomerHandler(c *gin.Context) {
	ct, ok := loadContract(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "message is required"})
		return
	}
	var cust models.Customer
	if err := db.First(&cust, ct.CustomerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "customer not found"})
		return
	}
	if cust.LineID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "customer has no lineId"})
		return
	}
	delivered := true
	if err := notifier.Push(cust.LineID, req.Message); err != nil {
		delivered = false
		logSideEffect("contract.notify.push", ct.ID, err)
	}
	logRow := models.ContractActionLog{
		ContractID: ct.ID,
		Action:     models.ActionNotifyLine,
		Note:       req.Message,
	}
	if err := db.Create(&logRow).Error; err != nil {
		logSideEffect("contract.notify.actionlog", ct.ID, err)
	}
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

// listContractsHandler returns contracts newest first, optionally filtered
// by status or customer.
func listContractsHandler(c *gin.Context) {
	q := db.Model(&models.Contract{}).Preload("Customer")
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", strings.ToUpper(s))
	}
	if cid := c.Query("customerId"); cid != "" {
		q = q.Where("customer_id = ?", cid)
	}
	var contracts []models.Contract
	if err := q.Order("id desc").Limit(200).Find(&contracts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func getContractHandler(c *gin.Context) {
	var ct models.Contract
	err := db.Preload("Customer").Preload("ActionLogs").Preload("CashbookEntries").
		First(&ct, c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "contract not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "query failed", "error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, ct)
}
