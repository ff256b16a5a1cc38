package vm

// irsStack is the Immediate Reuse Stack: a WordRegion addressed by the
// IRSP register (slot 26). Push writes then increments IRSP; pop
// decrements then reads.
type irsStack struct {
	region *WordRegion
	vm     *VM
}

func (s *irsStack) pushWord(word int32) error {
	p, err := s.vm.Registers.Get(RegIRSP)
	if err != nil {
		return err
	}
	ptr, _ := p.AsPtr()
	if err := s.region.Write(ptr.Offset, word); err != nil {
		return err
	}
	return s.vm.Registers.Set(RegIRSP, NewPtr(RegionIRS, ptr.Offset+1))
}

func (s *irsStack) popWord() (int32, error) {
	raw, err := s.vm.Registers.Get(RegIRSP)
	if err != nil {
		return 0, err
	}
	ptr, _ := raw.AsPtr()
	if ptr.Offset == 0 {
		return 0, &Fault{Kind: BoundsError, Message: "IRS pop below bottom"}
	}
	newOffset := ptr.Offset - 1
	word, err := s.region.Read(newOffset)
	if err != nil {
		return 0, err
	}
	if err := s.vm.Registers.Set(RegIRSP, NewPtr(RegionIRS, newOffset)); err != nil {
		return 0, err
	}
	return word, nil
}

// dataStack is the object-region stack addressed by the SP register
// (slot 29). The PUSH/POP register slots are its ports.
type dataStack struct {
	region *ObjectRegion
	vm     *VM
}

func (s *dataStack) pushValue(v Value) error {
	raw, err := s.vm.Registers.Get(RegSP)
	if err != nil {
		return err
	}
	ptr, _ := raw.AsPtr()
	if err := s.region.Write(ptr.Offset, v); err != nil {
		return err
	}
	return s.vm.Registers.Set(RegSP, NewPtr(RegionDataStack, ptr.Offset+1))
}

func (s *dataStack) popValue() (Value, error) {
	raw, err := s.vm.Registers.Get(RegSP)
	if err != nil {
		return Value{}, err
	}
	ptr, _ := raw.AsPtr()
	if ptr.Offset == 0 {
		return Value{}, &Fault{Kind: BoundsError, Message: "data stack pop below bottom"}
	}
	newOffset := ptr.Offset - 1
	v, err := s.region.Read(newOffset)
	if err != nil {
		return Value{}, err
	}
	if err := s.vm.Registers.Set(RegSP, NewPtr(RegionDataStack, newOffset)); err != nil {
		return Value{}, err
	}
	return v, nil
}

// callStack holds return addresses. Its pointer, CSP, is private to the
// VM and is never exposed as a register.
type callStack struct {
	region *WordRegion
	csp    uint32
}

func (s *callStack) push(returnOffset uint32) error {
	if err := s.region.Write(s.csp, int32(returnOffset)); err != nil {
		return err
	}
	s.csp++
	return nil
}

func (s *callStack) pop() (uint32, error) {
	if s.csp == 0 {
		return 0, &Fault{Kind: BoundsError, Message: "call stack underflow"}
	}
	s.csp--
	word, err := s.region.Read(s.csp)
	if err != nil {
		return 0, err
	}
	return uint32(word), nil
}

func (s *callStack) reset() {
	s.csp = 0
	s.region.reset()
}
