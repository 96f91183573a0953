package usecase

var RepairCode = repairCode
